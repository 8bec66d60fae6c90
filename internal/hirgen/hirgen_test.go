package hirgen

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"plcc/internal/lexer"
	"plcc/internal/parser"
	"plcc/internal/sema"
)

// generate runs the full front end through HIR generation and returns the
// resulting instruction strings, one per instruction, with any label
// defined immediately before an instruction prefixed as "label: ".
func generate(t *testing.T, src string) ([]string, int) {
	t.Helper()
	toks, err := lexer.Lex("t.pas", src)
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	root, err := parser.Parse("t.pas", toks)
	if err != nil {
		t.Fatalf("Parse returned error: %s", err)
	}
	a := sema.New("t.pas")
	if err := a.Analyze(root); err != nil {
		t.Fatalf("Analyze returned error: %s", err)
	}
	seq, maxVReg := Generate(root, a.Global())

	var lines []string
	for i := 0; i < seq.Len(); i++ {
		line := seq.Instruction(i).String()
		if label, ok := seq.LabelAt(i); ok {
			line = label + ": " + line
		}
		lines = append(lines, line)
	}
	if label, ok := seq.EndLabel(); ok {
		lines = append(lines, label+": (end)")
	}
	return lines, maxVReg
}

// TestVRegResetsPerStatement checks spec §9's load-bearing invariant: the
// virtual register counter returns to vr0 at the start of every top-level
// statement, regardless of how much expression work the previous
// statement did.
func TestVRegResetsPerStatement(t *testing.T) {
	src := "var x, y, z : integer;\nbegin\n\tx := (y + z) * (y - z);\n\ty := x\nend.\n"
	lines, maxVReg := generate(t, src)

	// The first statement's expression needs more than one vreg; the
	// second statement, a bare copy, should still open on vr0.
	if maxVReg < 1 {
		t.Fatalf("expected the first statement to need more than one vreg, maxVReg=%d", maxVReg)
	}
	foundResetLoad := false
	for _, l := range lines {
		if l == "LOCALADDR vr0, $8" { // y's address, second statement's first vreg use
			foundResetLoad = true
		}
	}
	if !foundResetLoad {
		t.Errorf("expected the second statement to restart at vr0; got lines:\n%s", joinLines(lines))
	}
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += "  " + l + "\n"
	}
	return out
}

// TestAssignLowering checks the exact three-instruction shape spec §4.2
// requires for a plain assignment: address, value, store.
func TestAssignLowering(t *testing.T) {
	lines, _ := generate(t, "var x : integer;\nbegin\n\tx := 5\nend.\n")
	want := []string{
		"LOCALADDR vr0, $0",
		"LOAD_ICONST vr1, $5",
		"STORE_INT vr0, vr1",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("assignment lowering mismatch (-want +got):\n%s", diff)
	}
}

// TestReadLowering checks spec §4.2's READ_INT-into-fresh-vreg-then-
// STORE_INT shape, rather than reading directly into the destination
// address.
func TestReadLowering(t *testing.T) {
	lines, _ := generate(t, "var x : integer;\nbegin\n\tread x\nend.\n")
	want := []string{
		"LOCALADDR vr0, $0",
		"READ_INT vr1",
		"STORE_INT vr0, vr1",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("read lowering mismatch (-want +got):\n%s", diff)
	}
}

// TestIfNoElse checks that a plain IF skips its body via an inverted
// condition targeting the end label, with no NOP needed (only IfElse's
// shared out-label needs the trailing NOP).
func TestIfNoElse(t *testing.T) {
	lines, _ := generate(t, "var x : integer;\nbegin\n\tif x = 0 then x := 1 end\nend.\n")
	// The then-branch's vregs continue on from the condition's (vr0-vr2)
	// rather than restarting at vr0: the per-statement reset only fires
	// once the enclosing STMT_LIST's current statement is fully lowered,
	// and the IF as a whole is still that one statement.
	want := []string{
		"LOCALADDR vr0, $0",
		"LOAD_INT vr1, vr0",
		"LOAD_ICONST vr2, $0",
		"INT_COMPARE vr1, vr2",
		"JNE .L0",
		"LOCALADDR vr3, $0",
		"LOAD_ICONST vr4, $1",
		"STORE_INT vr3, vr4",
		".L0: (end)",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("if-lowering mismatch (-want +got):\n%s", diff)
	}
}

// TestIfElseHasTrailingNop checks the NOP spec §4.2 requires after the
// shared IF/ELSE out label.
func TestIfElseHasTrailingNop(t *testing.T) {
	lines, _ := generate(t, "var x : integer;\nbegin\n\tif x = 0 then x := 1 else x := 2 end\nend.\n")
	last := lines[len(lines)-1]
	if last != ".L1: NOP" {
		t.Errorf("expected trailing NOP labeled with the shared out label, got %q", last)
	}
	foundJump := false
	for _, l := range lines {
		if l == "JUMP .L1" {
			foundJump = true
		}
	}
	if !foundJump {
		t.Errorf("expected the then-branch to JUMP over the else-branch; got lines:\n%s", joinLines(lines))
	}
}

// TestWhileLowering checks spec §4.2's test-at-top shape: an initial jump
// to the condition, then a non-inverted branch back to the body.
func TestWhileLowering(t *testing.T) {
	lines, _ := generate(t, "var x : integer;\nbegin\n\twhile x <> 0 do x := 0 end\nend.\n")
	if lines[0] != "JUMP .L1" {
		t.Errorf("expected the loop head to jump straight to the condition, got %q", lines[0])
	}
	last := lines[len(lines)-1]
	if last != "JNE .L0" {
		t.Errorf("expected the condition to branch back to the body on JNE (non-inverted <>), got %q", last)
	}
}

// TestRepeatUntilLowering checks spec §4.2's body-first shape: the body
// always runs once, then an inverted branch loops back while the
// condition is still false.
func TestRepeatUntilLowering(t *testing.T) {
	lines, _ := generate(t, "var x : integer;\nbegin\n\trepeat x := 0 until x = 1 end.\n")
	if lines[0] == "JUMP .L1" {
		t.Errorf("repeat/until must not jump around the body before running it once")
	}
	last := lines[len(lines)-1]
	if last != "JNE .L0" {
		t.Errorf("expected an inverted (JNE for =) branch back to the body, got %q", last)
	}
}

// TestArrayElementAddr checks the base+index*elemSize address shape.
func TestArrayElementAddr(t *testing.T) {
	lines, _ := generate(t, "var a : array 3 of integer;\nbegin\n\ta[1] := 0\nend.\n")
	want := []string{
		"LOCALADDR vr0, $0",
		"LOAD_ICONST vr1, $1",
		"INT_MUL vr2, vr1, $8",
		"INT_ADD vr3, vr0, vr2",
		"LOAD_ICONST vr4, $0",
		"STORE_INT vr3, vr4",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("array element address mismatch (-want +got):\n%s", diff)
	}
}

// TestFieldAddr checks that a record field address is a single INT_ADD
// against a compile-time-constant offset, with no multiply.
func TestFieldAddr(t *testing.T) {
	src := "type point = record x, y : integer; end;\nvar p : point;\nbegin\n\tp.y := 0\nend.\n"
	lines, _ := generate(t, src)
	// The type definition `point` takes the first 16 bytes of the frame,
	// so p itself starts at offset 16.
	want := []string{
		"LOCALADDR vr0, $16",
		"INT_ADD vr1, vr0, $8",
		"LOAD_ICONST vr2, $0",
		"STORE_INT vr1, vr2",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("field address mismatch (-want +got):\n%s", diff)
	}
}
