package vm_test

import (
	"bytes"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/visviva/thorium/vm"
)

func init() { logrus.SetLevel(logrus.DebugLevel) }

// assertOutput interprets src against a fresh VM and asserts its combined
// `print` output. An empty errSubstr demands success; a non-empty one demands
// the returned error's message contain it (output up to the failing line is
// still checked).
func assertOutput(t *testing.T, src, wantOut, errSubstr string) {
	t.Helper()

	var out bytes.Buffer
	err := vm.NewVMWithOutput(&out).Interpret(src)

	if errSubstr == "" {
		assert.NoError(t, err)
	} else {
		assert.ErrorContains(t, err, errSubstr)
	}
	assert.Equal(t, wantOut, out.String())
}

func TestArithmeticPrecedence(t *testing.T) {
	assertOutput(t, "print 1 + 2 * 3;", "7\n", "")
	assertOutput(t, "print (1 + 2) * 3;", "9\n", "")
	assertOutput(t, "print 2 + 2;", "4\n", "")
	assertOutput(t, "print 11.4 + 5.14 / 2;", "13.97\n", "")
	assertOutput(t, "print -6 * (-4 + -3) == 6*4 + 2 * ((((9))));", "true\n", "")
}

func TestUnary(t *testing.T) {
	assertOutput(t, "print -(-1);", "1\n", "")
	assertOutput(t, "print !nil;", "true\n", "")
	assertOutput(t, "print !!true;", "true\n", "")
	assertOutput(t, "print !false;", "true\n", "")
}

func TestComparisonDesugaring(t *testing.T) {
	assertOutput(t, "print 1 < 2 == true;", "true\n", "")
	assertOutput(t, "print 1 <= 1;", "true\n", "")
	assertOutput(t, "print 2 >= 1;", "true\n", "")
	assertOutput(t, "print 1 > 2;", "false\n", "")
	assertOutput(t, "print 1 != 2;", "true\n", "")
}

func TestLiteralsAndEquality(t *testing.T) {
	assertOutput(t, "print nil;", "nil\n", "")
	assertOutput(t, "print true == false;", "false\n", "")
	assertOutput(t, `print "hi" == "hi";`, "true\n", "")
	assertOutput(t, `print "hi" == 1;`, "false\n", "")
}

func TestStrings(t *testing.T) {
	assertOutput(t, `var a = "hi"; print a;`, "hi\n", "")
	assertOutput(t, heredoc.Doc(`
		var greeting = "hello, world";
		print greeting;
	`), "hello, world\n", "")
}

func TestGlobalsDefineGetSet(t *testing.T) {
	assertOutput(t, heredoc.Doc(`
		var x = 1;
		x = 2;
		print x;
	`), "2\n", "")
	assertOutput(t, heredoc.Doc(`
		var a;
		print a;
	`), "nil\n", "")
	assertOutput(t, heredoc.Doc(`
		var a = 1;
		var b = 2;
		print a = b = 3;
		print a;
		print b;
	`), "3\n3\n3\n", "")
}

func TestExpressionStatementProducesNoOutput(t *testing.T) {
	assertOutput(t, "1 + 2;", "", "")
	assertOutput(t, "// just a comment\n  ", "", "")
	assertOutput(t, "", "", "")
}

func TestUndefinedGlobalRead(t *testing.T) {
	assertOutput(t, "print a;", "", "Undefined variable 'a'")
}

func TestUndefinedGlobalAssign(t *testing.T) {
	assertOutput(t, "a = 1;", "", "Undefined variable 'a'")
}

func TestRuntimeTypeErrors(t *testing.T) {
	assertOutput(t, `-"a";`, "", "Operand must be a number")
	assertOutput(t, `print "a" + 1;`, "", "Operand must be a number")
	assertOutput(t, `print 1 < "a";`, "", "Operand must be a number")
}

func TestCompileErrors(t *testing.T) {
	assertOutput(t, "print ;", "", "Expect expression")
	assertOutput(t, "1 + 2", "", "Expect ';' after value")
	assertOutput(t, "1 = 2;", "", "Invalid assignment target")
}

func TestConstantPoolOverflow(t *testing.T) {
	var src bytes.Buffer
	for i := 0; i < 257; i++ {
		src.WriteString("1;\n")
	}
	assertOutput(t, src.String(), "", "Too many constants in one chunk")
}

func TestRecoversAcrossStatementBoundary(t *testing.T) {
	// The first statement errors; sync() resumes at the next statement, which
	// compiles cleanly, so only the one diagnostic is reported. The chunk is
	// discarded on a compile error, so nothing is printed.
	assertOutput(t, heredoc.Doc(`
		1 = 2;
		print 1 + 1;
	`), "", "Invalid assignment target")
}
