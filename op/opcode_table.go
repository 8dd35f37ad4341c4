package op

// Opcode numbers. Opcode 0 is halt so that zero-filled ROM falls through
// to a clean stop instead of executing garbage.
const (
	OpHalt byte = iota
	OpLoad
	OpStore
	OpLoadP
	OpLoadPR
	OpStoreP
	OpTaPR
	OpPush
	OpPop
	OpCall
	OpReturn
	OpJump
	OpJumpC
	OpClf
	OpAnd
	OpOr
	OpXor
	OpLsl
	OpLsr
	OpRol
	OpRor
	OpComp
	OpAdd
	OpSub
	OpAddC
	OpSubC
	OpInc
	OpDec
	OpMul
	OpDiv
	OpMod
	OpPortW
	OpPortR
	OpInt
)

// OpCode is the definition of instructions.
type OpCode struct {
	Name    string
	Code    byte
	Comment string
}

var OpCodeTable = []OpCode{
	{"halt", OpHalt, "stop, exit code 0"},
	{"load", OpLoad, "acc <- bus"},
	{"store", OpStore, "cache[bus] <- acc"},
	{"loadp", OpLoadP, "acc <- cache[acc]"},
	{"loadpr", OpLoadPR, "pr <- bus"},
	{"storep", OpStoreP, "cache[pr] <- acc"},
	{"tapr", OpTaPR, "pr <- acc"},
	{"push", OpPush, "stack push acc"},
	{"pop", OpPop, "stack pop -> acc"},
	{"call", OpCall, "push pc, jump to bus"},
	{"return", OpReturn, "pc <- address stack pop"},
	{"jump", OpJump, "pc <- bus"},
	{"jumpc", OpJumpC, "pc <- pr if flags & bus"},
	{"clf", OpClf, "clear flags"},
	{"and", OpAnd, "acc <- acc & bus"},
	{"or", OpOr, "acc <- acc | bus"},
	{"xor", OpXor, "acc <- acc ^ bus"},
	{"lsl", OpLsl, "acc <- acc << bus, overflow = old top bit"},
	{"lsr", OpLsr, "acc <- acc >> bus, underflow = old bit 0"},
	{"rol", OpRol, "rotate left by bus"},
	{"ror", OpRor, "rotate right by bus"},
	{"comp", OpComp, "acc <- 65535/0/1 for acc </==/> bus"},
	{"add", OpAdd, "acc <- acc + bus, carry on overflow"},
	{"sub", OpSub, "acc <- acc - bus, carry on underflow"},
	{"addc", OpAddC, "add with carry in"},
	{"subc", OpSubC, "sub with carry in"},
	{"inc", OpInc, "acc <- acc + 1, carry on wrap"},
	{"dec", OpDec, "acc <- acc - 1, carry on wrap"},
	{"mul", OpMul, "acc <- acc * bus, overflow past 16 bits"},
	{"div", OpDiv, "acc <- acc / bus"},
	{"mod", OpMod, "acc <- acc % bus"},
	{"portw", OpPortW, "ports[bus] <- acc"},
	{"portr", OpPortR, "acc <- ports[bus]"},
	{"int", OpInt, "stop, exit code bus"},
}

// Lookup returns the OpCode definition for a code, or false when the
// code has no table entry.
func Lookup(code byte) (OpCode, bool) {
	for _, elem := range OpCodeTable {
		if elem.Code == code {
			return elem, true
		}
	}
	return OpCode{}, false
}
