package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/visviva/thorium/debug"
	e "github.com/visviva/thorium/errors"
)

// VM is a fetch-decode-execute loop over a borrowed Chunk: a value stack and
// a global-name environment. The stack is reset on each Interpret call; the
// globals persist across calls.
type VM struct {
	chunk   *Chunk
	ip      int
	stack   []Value
	globals map[string]Value
	out     io.Writer
}

func NewVM() *VM { return &VM{globals: map[string]Value{}, out: os.Stdout} }

// NewVMWithOutput is NewVM with `print` writing to out instead of stdout;
// tests use it to assert on interpreted output without touching the real
// standard output stream.
func NewVMWithOutput(out io.Writer) *VM { return &VM{globals: map[string]Value{}, out: out} }

func (vm *VM) push(val Value) { vm.stack = append(vm.stack, val) }

func (vm *VM) pop() (last Value) {
	len_ := len(vm.stack)
	vm.stack, last = vm.stack[:len_-1], vm.stack[len_-1]
	return
}

func (vm *VM) peek(distFromTop int) Value { return vm.stack[len(vm.stack)-1-distFromTop] }

// Interpret compiles src into a fresh Chunk and runs it to completion or to
// the first runtime error. A CompileError leaves the VM's prior state
// untouched; the globals map persists across calls so a REPL session keeps
// its bindings.
func (vm *VM) Interpret(src string) error {
	parser := NewParser()
	chunk, err := parser.Compile(src)
	if err != nil {
		return err
	}
	vm.chunk = chunk
	vm.ip = 0
	vm.stack = vm.stack[:0]
	return vm.run()
}

func (vm *VM) run() error {
	readByte := func() (res byte) {
		res = vm.chunk.code[vm.ip]
		vm.ip++
		return
	}
	readConst := func() Value { return vm.chunk.consts[readByte()] }

	for vm.ip < len(vm.chunk.code) {
		oldIP := vm.ip
		if debug.DEBUG {
			logrus.Debugln(vm.stackTrace())
			instDump, _ := vm.chunk.DisassembleInst(oldIP)
			logrus.Debugln(instDump)
		}

		runtimeErr := func(format string, a ...any) error {
			err := &e.RuntimeError{Line: vm.chunk.lines[oldIP], Reason: fmt.Sprintf(format, a...)}
			vm.stack = vm.stack[:0]
			return err
		}

		// binaryNumOp applies op to the top two stack slots, replacing them
		// with the result; both operands must be Number.
		binaryNumOp := func(op func(a, b Value) (Value, bool)) error {
			if len(vm.stack) < 2 {
				return runtimeErr("stack underflow")
			}
			b, a := vm.pop(), vm.pop()
			res, ok := op(a, b)
			if !ok {
				return runtimeErr("Operand must be a number")
			}
			vm.push(res)
			return nil
		}

		switch inst := OpCode(readByte()); inst {
		case OpConst:
			vm.push(readConst())

		case OpNil:
			vm.push(VNil{})
		case OpTrue:
			vm.push(VBool(true))
		case OpFalse:
			vm.push(VBool(false))

		case OpPop:
			if len(vm.stack) < 1 {
				return runtimeErr("stack underflow")
			}
			vm.pop()

		case OpDefGlobal:
			name, ok := readConst().(VStr)
			if !ok {
				return runtimeErr("variable name must be a string")
			}
			if len(vm.stack) < 1 {
				return runtimeErr("stack underflow")
			}
			vm.globals[name.Raw()] = vm.pop()

		case OpGetGlobal:
			name, ok := readConst().(VStr)
			if !ok {
				return runtimeErr("variable name must be a string")
			}
			val, ok := vm.globals[name.Raw()]
			if !ok {
				return runtimeErr("Undefined variable '%s'.", name.Raw())
			}
			vm.push(val)

		case OpSetGlobal:
			name, ok := readConst().(VStr)
			if !ok {
				return runtimeErr("variable name must be a string")
			}
			if _, ok := vm.globals[name.Raw()]; !ok {
				return runtimeErr("Undefined variable '%s'.", name.Raw())
			}
			if len(vm.stack) < 1 {
				return runtimeErr("stack underflow")
			}
			// An assignment is itself an expression: leave the value on the stack.
			vm.globals[name.Raw()] = vm.peek(0)

		case OpEqual:
			if len(vm.stack) < 2 {
				return runtimeErr("stack underflow")
			}
			b, a := vm.pop(), vm.pop()
			vm.push(VEq(a, b))

		case OpGreater:
			if err := binaryNumOp(VGreater); err != nil {
				return err
			}
		case OpLess:
			if err := binaryNumOp(VLess); err != nil {
				return err
			}

		case OpNot:
			if len(vm.stack) < 1 {
				return runtimeErr("stack underflow")
			}
			vm.push(!VTruthy(vm.pop()))

		case OpNeg:
			if len(vm.stack) < 1 {
				return runtimeErr("stack underflow")
			}
			res, ok := VNeg(vm.pop())
			if !ok {
				return runtimeErr("Operand must be a number")
			}
			vm.push(res)

		case OpAdd:
			if err := binaryNumOp(VAdd); err != nil {
				return err
			}
		case OpSub:
			if err := binaryNumOp(VSub); err != nil {
				return err
			}
		case OpMul:
			if err := binaryNumOp(VMul); err != nil {
				return err
			}
		case OpDiv:
			if err := binaryNumOp(VDiv); err != nil {
				return err
			}

		case OpPrint:
			if len(vm.stack) < 1 {
				return runtimeErr("stack underflow")
			}
			fmt.Fprintln(vm.out, VPrint(vm.pop()))

		case OpReturn:
			return nil

		default:
			return runtimeErr("unknown instruction '%d'", inst)
		}
	}
	return nil
}

func (vm *VM) stackTrace() string {
	res := "          "
	for _, slot := range vm.stack {
		res += fmt.Sprintf("[ %s ]", slot)
	}
	return res
}
