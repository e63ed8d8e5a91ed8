package packet

// Client → server opcodes.
const (
	C_OPCODE_MOVE      byte = 1 // x f32, y f32
	C_OPCODE_HEARTBEAT byte = 2 // no payload
)

// Server → client opcodes.
const (
	S_OPCODE_CREATE_SELF  byte = 101 // id i32, x f32, y f32
	S_OPCODE_CREATE_OTHER byte = 102 // id i32, x f32, y f32
	S_OPCODE_DELETE       byte = 103 // id i32
	S_OPCODE_PATH         byte = 104 // id i32, count i32, count × (x i32, y i32)
	S_OPCODE_NOTICE       byte = 105 // text (Big5, null-terminated)
)
