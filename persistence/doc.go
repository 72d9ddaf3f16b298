// Package persistence writes and reads framed, checksummed checkpoints.
//
// A frame is laid out as
//
//	magic     uint32  "FSC1"
//	version   uint16
//	codec     uint8 length + name
//	compress  uint8 length + name
//	length    uint64  payload bytes
//	payload   encoded, then compressed value
//	checksum  uint32  CRC32 of all preceding bytes
//
// All integers are little-endian. The codec and compression names make a
// frame readable regardless of the writer's configuration.
package persistence
