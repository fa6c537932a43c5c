package value

// Opcode identifies a single VM instruction. Opcodes that take a
// constant-pool index come in short/long pairs: the long form is always
// exactly short+1 and carries a 24-bit big-endian operand instead of the
// short form's 8-bit operand. Both the compiler's emitter and the
// disassembler rely on this invariant, and OpcodeNames/opcodeInfo are laid
// out to preserve it.
type Opcode uint8

//nolint:revive
const (
	OpConstant Opcode = iota
	OpConstantLong

	OpNil
	OpTrue
	OpFalse

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpMod
	OpNegate

	OpNot
	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual

	OpDefineGlobal
	OpDefineGlobalLong
	OpGetGlobal
	OpGetGlobalLong
	OpSetGlobal
	OpSetGlobalLong

	OpDefineGlobalStack
	OpSetGlobalStack
	OpGetGlobalStack
	OpGetGlobalStackPopless

	OpGetLocal
	OpGetLocalLong
	OpSetLocal
	OpSetLocalLong

	OpPop
	OpPopN

	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpJumpNPop
	OpLoop
	OpLoopIfTrue

	OpCall
	OpIndex
	OpIndexRange
	OpIndexRangeInterval

	OpInterpolateStr

	OpPrint

	OpReturn
	OpExtract

	maxOpcode
)

type opInfo struct {
	name     string
	operands int // number of inline operand bytes (1 short-const, 2 jump, 3 long-const, 5 JUMP_NPOP)
}

var opcodeInfo = [...]opInfo{
	OpConstant:     {"CONSTANT", 1},
	OpConstantLong: {"CONSTANT_LONG", 3},

	OpNil:   {"NIL", 0},
	OpTrue:  {"TRUE", 0},
	OpFalse: {"FALSE", 0},

	OpAdd:      {"ADD", 0},
	OpSubtract: {"SUBTRACT", 0},
	OpMultiply: {"MULTIPLY", 0},
	OpDivide:   {"DIVIDE", 0},
	OpMod:      {"MOD", 0},
	OpNegate:   {"NEGATE", 0},

	OpNot:          {"NOT", 0},
	OpEqual:        {"EQUAL", 0},
	OpNotEqual:     {"NOT_EQUAL", 0},
	OpGreater:      {"GREATER", 0},
	OpGreaterEqual: {"GREATER_EQUAL", 0},
	OpLess:         {"LESS", 0},
	OpLessEqual:    {"LESS_EQUAL", 0},

	OpDefineGlobal:     {"DEFINE_GLOBAL", 1},
	OpDefineGlobalLong: {"DEFINE_GLOBAL_LONG", 3},
	OpGetGlobal:        {"GET_GLOBAL", 1},
	OpGetGlobalLong:    {"GET_GLOBAL_LONG", 3},
	OpSetGlobal:        {"SET_GLOBAL", 1},
	OpSetGlobalLong:    {"SET_GLOBAL_LONG", 3},

	OpDefineGlobalStack:    {"DEFINE_GLOBAL_STACK", 0},
	OpSetGlobalStack:       {"SET_GLOBAL_STACK", 0},
	OpGetGlobalStack:       {"GET_GLOBAL_STACK", 0},
	OpGetGlobalStackPopless: {"GET_GLOBAL_STACK_POPLESS", 0},

	OpGetLocal:     {"GET_LOCAL", 1},
	OpGetLocalLong: {"GET_LOCAL_LONG", 3},
	OpSetLocal:     {"SET_LOCAL", 1},
	OpSetLocalLong: {"SET_LOCAL_LONG", 3},

	OpPop:  {"POP", 0},
	OpPopN: {"POPN", 3},

	OpJump:        {"JUMP", 2},
	OpJumpIfFalse: {"JUMP_IF_FALSE", 2},
	OpJumpIfTrue:  {"JUMP_IF_TRUE", 2},
	// JUMP_NPOP carries a 24-bit pop count followed by a 16-bit jump
	// distance (5 operand bytes total).
	OpJumpNPop:   {"JUMP_NPOP", 5},
	OpLoop:       {"LOOP", 2},
	OpLoopIfTrue: {"LOOP_IF_TRUE", 2},

	OpCall:               {"CALL", 1},
	OpIndex:               {"INDEX", 0},
	OpIndexRange:          {"INDEX_RANGE", 0},
	OpIndexRangeInterval:  {"INDEX_RANGE_INTERVAL", 0},

	OpInterpolateStr: {"INTERPOLATE_STR", 0},

	OpPrint: {"PRINT", 0},

	OpReturn:  {"RETURN", 0},
	OpExtract: {"EXTRACT", 0},
}

// String returns the disassembler-facing mnemonic for op.
func (op Opcode) String() string {
	if int(op) < len(opcodeInfo) && opcodeInfo[op].name != "" {
		return opcodeInfo[op].name
	}
	return "UNKNOWN_OPCODE"
}

// OperandBytes returns how many inline operand bytes follow op in the
// bytecode stream, including both fields of JUMP_NPOP's combined
// pop-count-then-jump-distance operand.
func (op Opcode) OperandBytes() int {
	if int(op) < len(opcodeInfo) {
		return opcodeInfo[op].operands
	}
	return 0
}

// IsLongForm reports whether op is the long (24-bit operand) member of a
// short/long constant-index pair.
func (op Opcode) IsLongForm() bool {
	switch op {
	case OpConstantLong, OpDefineGlobalLong, OpGetGlobalLong, OpSetGlobalLong,
		OpGetLocalLong, OpSetLocalLong:
		return true
	}
	return false
}
