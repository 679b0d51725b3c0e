// Package chunk models Pure3D-style chunk files and the capability used to
// emit them.
//
// A chunk file is a tree: every [Chunk] has a [Tag], an ordered list of
// named fields and nested sub-chunks. Producers never see bytes. They call
// the [Writer] methods and leave the on-disk form to whoever owns the writer.
//
// # Document
//
// [Document] is the in-memory [Writer] shipped with this package. It
// collects the chunk tree and, on [Document.Flush], encodes it with a
// [Codec] and replaces the destination file atomically:
//
//	doc := chunk.NewDocument(chunk.P3D)
//	tc := doc.BeginChunk(doc.Root(), 0x3F00004)
//	doc.WriteVector(tc, "WorldBoundsMinimum", 0, 0, 0)
//	doc.WriteValue(tc, "Count", chunk.Uint32(3))
//	err := doc.Flush("out.p3d")
//
// # Codecs
//
//   - [P3D]: little-endian binary; each chunk is a 12-byte header (tag, data
//     size, total size) followed by its payload and sub-chunks, all wrapped
//     in a [FileTag] chunk.
//   - [XML]: the p3dxml text form, one Chunk element per chunk.
//   - [JSON]: an indented debug dump of the same tree.
//
// [DecodeP3D] reads binary output back into a generic chunk tree. It knows
// nothing about any particular schema: payloads come back as raw bytes and
// [Chunk.Decode] interprets them against a caller-supplied field layout.
package chunk
