package lox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run lexes, parses, resolves and interprets src, returning everything
// printed via `print`/bare-expr-in-REPL plus the diagnostics sink.
func run(t *testing.T, src string) (string, *Diagnostics) {
	t.Helper()
	var out bytes.Buffer
	diags := NewDiagnostics(&bytes.Buffer{})
	interp := NewInterpreter(&out, diags)
	Run(interp, diags, []byte(src))
	return out.String(), diags
}

func TestInterpreterArithmeticAndPrecedence(t *testing.T) {
	out, diags := run(t, `print 1 + 2 * 3;`)
	require.False(t, diags.HadError())
	assert.Equal(t, "7\n", out)
}

func TestInterpreterStringConcatenation(t *testing.T) {
	out, diags := run(t, `print "foo" + "bar";`)
	require.False(t, diags.HadError())
	assert.Equal(t, "foobar\n", out)
}

func TestInterpreterMixedPlusConcatenates(t *testing.T) {
	out, diags := run(t, `print "foo" + 1;`)
	require.False(t, diags.HadRuntimeError())
	assert.Equal(t, "foo1\n", out)
}

func TestInterpreterVariablesAndScoping(t *testing.T) {
	out, diags := run(t, `
var a = "outer";
{
  var a = "inner";
  print a;
}
print a;
`)
	require.False(t, diags.HadError())
	assert.Equal(t, "inner\nouter\n", out)
}

func TestInterpreterClosureCapturesByReference(t *testing.T) {
	out, diags := run(t, `
fun makeCounter() {
  var i = 0;
  fun count() {
    i = i + 1;
    print i;
  }
  return count;
}
var counter = makeCounter();
counter();
counter();
`)
	require.False(t, diags.HadError())
	assert.Equal(t, "1\n2\n", out)
}

func TestInterpreterIfElse(t *testing.T) {
	out, diags := run(t, `
if (1 < 2) print "yes"; else print "no";
`)
	require.False(t, diags.HadError())
	assert.Equal(t, "yes\n", out)
}

func TestInterpreterForLoopWithContinue(t *testing.T) {
	out, diags := run(t, `
for (var i = 0; i < 5; i = i + 1) {
  if (i == 2) continue;
  print i;
}
`)
	require.False(t, diags.HadError())
	assert.Equal(t, "0\n1\n3\n4\n", out)
}

func TestInterpreterWhileLoopWithBreak(t *testing.T) {
	out, diags := run(t, `
var i = 0;
while (true) {
  if (i == 3) break;
  print i;
  i = i + 1;
}
`)
	require.False(t, diags.HadError())
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestInterpreterFunctionReturn(t *testing.T) {
	out, diags := run(t, `
fun add(a, b) { return a + b; }
print add(2, 3);
`)
	require.False(t, diags.HadError())
	assert.Equal(t, "5\n", out)
}

func TestInterpreterCallArityMismatchIsRuntimeError(t *testing.T) {
	_, diags := run(t, `
fun add(a, b) { return a + b; }
add(1);
`)
	assert.True(t, diags.HadRuntimeError())
}

func TestInterpreterClassInheritanceAndSuper(t *testing.T) {
	out, diags := run(t, `
class Doughnut {
  cook() {
    print "Fry until golden brown.";
  }
}
class BostonCream < Doughnut {
  cook() {
    super.cook();
    print "Pipe full of custard and coat with chocolate.";
  }
}
BostonCream().cook();
`)
	require.False(t, diags.HadError())
	assert.Equal(t, "Fry until golden brown.\nPipe full of custard and coat with chocolate.\n", out)
}

func TestInterpreterInitializerAlwaysReturnsThis(t *testing.T) {
	out, diags := run(t, `
class Thing {
  init(a) {
    this.a = a;
  }
  getA() {
    return this.a;
  }
}
print Thing(5).getA();
`)
	require.False(t, diags.HadError())
	assert.Equal(t, "5\n", out)
}

func TestInterpreterUndefinedVariableIsRuntimeError(t *testing.T) {
	_, diags := run(t, `print nope;`)
	assert.True(t, diags.HadRuntimeError())
}

func TestInterpreterClockIsAnOrdinaryGlobalCallable(t *testing.T) {
	out, diags := run(t, `print clock() >= 0;`)
	require.False(t, diags.HadError())
	assert.Equal(t, "true\n", out)
}

func TestInterpreterSkipsExecutionWhenResolveFails(t *testing.T) {
	out, diags := run(t, `
var a = "outer";
{
  var a = a;
}
print "should not run";
`)
	assert.True(t, diags.HadError())
	assert.Empty(t, out)
}
