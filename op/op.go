// Package op defines opcodes used by the PAL compiler and virtual machine.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Constants and literal pushes
	Constant Code = 1
	True     Code = 2
	False    Code = 3
	Null     Code = 4

	// Unary and binary operators
	Negate Code = 5
	Invert Code = 6
	Power  Code = 7
	Add    Code = 8
	Sub    Code = 9
	Equal  Code = 10
	Less   Code = 11
	More   Code = 12
	Mix    Code = 13

	// Output
	Print Code = 14

	// Variables
	GetGlobal Code = 15
	SetGlobal Code = 16
	GetLocal  Code = 17
	SetLocal  Code = 18

	// Jumps
	Loop       Code = 19
	FalseyJump Code = 20
	AlwaysJump Code = 21

	// Iteration
	Advance Code = 22

	// Stack
	Pop Code = 23

	// Definitions
	DefGlobal Code = 24
	Enum      Code = 25
	GetField  Code = 26
	DefField  Code = 27
	DefElem   Code = 28

	// Calls and control transfer
	Return Code = 29
	Call   Code = 30
	Yield  Code = 31
	Sleep  Code = 32

	// Instrument actions. These have no dispatch case in the VM; they are
	// routed to the host's action hook.
	Scan    Code = 33
	Cluster Code = 34
	Filter  Code = 35
	Mark    Code = 36
	Tighten Code = 37
	Search  Code = 38
)

// OperandClass describes how an opcode's single operand is interpreted.
type OperandClass uint8

const (
	// OperandNone indicates the opcode takes no operand.
	OperandNone OperandClass = iota

	// OperandConstant indicates the operand is a constant pool index.
	OperandConstant

	// OperandByte indicates the operand is a raw count or local slot.
	OperandByte

	// OperandJumpForward indicates a relative forward jump. The target
	// offset is instruction offset + 2 + operand.
	OperandJumpForward

	// OperandJumpBackward indicates a relative backward jump. The target
	// offset is instruction offset + 2 - operand.
	OperandJumpBackward
)

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
	Class        OperandClass
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op    Code
		name  string
		count int
		class OperandClass
	}
	ops := []opInfo{
		{Add, "ADD", 0, OperandNone},
		{Advance, "ADVANCE", 0, OperandNone},
		{AlwaysJump, "ALWAYS_JUMP", 1, OperandJumpForward},
		{Call, "CALL", 1, OperandByte},
		{Cluster, "CLUSTER", 0, OperandNone},
		{Constant, "CONSTANT", 1, OperandConstant},
		{DefElem, "DEF_ELEM", 1, OperandConstant},
		{DefField, "DEF_FIELD", 1, OperandConstant},
		{DefGlobal, "DEF_GLOBAL", 1, OperandConstant},
		{Enum, "ENUM", 1, OperandConstant},
		{Equal, "EQUAL", 0, OperandNone},
		{False, "FALSE", 0, OperandNone},
		{FalseyJump, "FALSEY_JUMP", 1, OperandJumpForward},
		{Filter, "FILTER", 0, OperandNone},
		{GetField, "GET_FIELD", 1, OperandConstant},
		{GetGlobal, "GET_GLOBAL", 1, OperandConstant},
		{GetLocal, "GET_LOCAL", 1, OperandByte},
		{Invert, "INVERT", 0, OperandNone},
		{Less, "LESS", 0, OperandNone},
		{Loop, "LOOP", 1, OperandJumpBackward},
		{Mark, "MARK", 0, OperandNone},
		{Mix, "MIX", 0, OperandNone},
		{More, "MORE", 0, OperandNone},
		{Negate, "NEGATE", 0, OperandNone},
		{Null, "NULL", 0, OperandNone},
		{Pop, "POP", 0, OperandNone},
		{Power, "POWER", 0, OperandNone},
		{Print, "PRINT", 0, OperandNone},
		{Return, "RETURN", 0, OperandNone},
		{Scan, "SCAN", 0, OperandNone},
		{Search, "SEARCH", 0, OperandNone},
		{SetGlobal, "SET_GLOBAL", 1, OperandConstant},
		{SetLocal, "SET_LOCAL", 1, OperandByte},
		{Sleep, "SLEEP", 0, OperandNone},
		{Sub, "SUB", 0, OperandNone},
		{Tighten, "TIGHTEN", 0, OperandNone},
		{True, "TRUE", 0, OperandNone},
		{Yield, "YIELD", 0, OperandNone},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
			Class:        o.class,
		}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	return infos[op]
}
