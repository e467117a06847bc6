// Package protocol implements the binary wire format spoken between the
// browser shim and the drag server.
//
// Clients send native drag and click events; the server answers with the
// element changes those events caused.
//
// # Wire Format
//
// Every message is a frame with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Reserved     │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameEvent (0x01): client to server events
//   - FramePatches (0x02): server to client patches
//   - FrameError (0x05): error report, either direction
//
// # Encoding
//
// Integers are protobuf-style varints. Strings are a varint length followed
// by UTF-8 bytes. Booleans are a single 0x00 or 0x01 byte.
//
// A dragstart event:
//
//	[Seq: varint][Type: 0x50][HID][Flags: byte]
//	[EffectAllowed][DropEffect][Count: varint]{[Format][Data]}*
//
// Click events stop after the HID. Data entries are written in sorted
// format order so equal events encode to equal bytes.
//
// A patches frame:
//
//	[Seq: varint][Count: varint]{[Op: byte][HID][Key][Value]}*
//
// # Limits
//
// Decoding is bounded by Limits: string length, number of data entries and
// number of patches. Oversized input fails with ErrLimitExceeded before any
// allocation.
//
// # Usage Example
//
//	data := protocol.EncodeEvent(&protocol.Event{
//	    Seq:  1,
//	    Type: protocol.EventDragStart,
//	    HID:  "h3",
//	    AllowSetDragImage: true,
//	})
//	frame := protocol.NewFrame(protocol.FrameEvent, data)
//	conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
package protocol
