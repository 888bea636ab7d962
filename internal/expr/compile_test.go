package expr

import (
	"testing"

	"github.com/google/cel-go/cel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tactica/internal/pred"
	"github.com/roach88/tactica/internal/testutil"
)

type fighter struct {
	hp    int
	reach int
}

type spot struct {
	dist     int
	walkable bool
}

func testRegistry() *Registry[*fighter, *spot] {
	return NewRegistry[*fighter, *spot]().
		Register("alive", Static[*fighter, *spot](pred.Func[*fighter, *spot](func(f *fighter, _ *spot) bool {
			return f.hp > 0
		}))).
		Register("walkable", Static[*fighter, *spot](pred.Func[*fighter, *spot](func(_ *fighter, s *spot) bool {
			return s.walkable
		}))).
		Register("within", func(args map[string]any) (pred.Pred[*fighter, *spot], error) {
			limit, err := IntArg(args, "max")
			if err != nil {
				return nil, err
			}
			return pred.Func[*fighter, *spot](func(_ *fighter, s *spot) bool {
				return s.dist <= limit
			}), nil
		})
}

func testCEL(t *testing.T) *CELBinding[*fighter, *spot] {
	t.Helper()
	env, err := cel.NewEnv(
		cel.Variable("actor", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("cell", cel.MapType(cel.StringType, cel.DynType)),
	)
	require.NoError(t, err)
	return &CELBinding[*fighter, *spot]{
		Env: env,
		Activation: func(f *fighter, s *spot) map[string]any {
			return map[string]any{
				"actor": map[string]any{"hp": f.hp, "reach": f.reach},
				"cell":  map[string]any{"dist": s.dist, "walkable": s.walkable},
			}
		},
	}
}

func decode(t *testing.T, src string) Node {
	t.Helper()
	var n Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &n))
	return n
}

func TestCompile_LeafAndCombinators(t *testing.T) {
	c := &Compiler[*fighter, *spot]{Leaves: testRegistry()}

	n := decode(t, `
all:
  - leaf: alive
  - any:
      - leaf: walkable
      - not: { leaf: within, args: { max: 2 } }
`)
	prog, err := c.Compile("when", n)
	require.NoError(t, err)

	tests := []struct {
		name string
		f    *fighter
		s    *spot
		want bool
	}{
		{"alive on walkable", &fighter{hp: 1}, &spot{dist: 1, walkable: true}, true},
		{"alive far unwalkable", &fighter{hp: 1}, &spot{dist: 5}, true},
		{"alive near unwalkable", &fighter{hp: 1}, &spot{dist: 2}, false},
		{"dead", &fighter{hp: 0}, &spot{walkable: true}, false},
	}
	for _, tc := range tests {
		tc := tc // per-iteration copy (go1.22 loopvar semantics)
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, prog.Test(tc.f, tc.s))
			got, _ := prog.Explain(tc.f, tc.s)
			assert.Equal(t, tc.want, got, "explain must agree with test")
		})
	}
}

func TestCompile_EmptyGroupsAreIdentities(t *testing.T) {
	c := &Compiler[*fighter, *spot]{Leaves: testRegistry()}

	all, err := c.Compile("", decode(t, `all: []`))
	require.NoError(t, err)
	assert.True(t, all.Test(&fighter{}, &spot{}))

	anyProg, err := c.Compile("", decode(t, `any: []`))
	require.NoError(t, err)
	assert.False(t, anyProg.Test(&fighter{}, &spot{}))
}

func TestCompile_Const(t *testing.T) {
	c := &Compiler[*fighter, *spot]{}

	yes, err := c.Compile("", Const(true))
	require.NoError(t, err)
	no, err := c.Compile("", decode(t, `const: false`))
	require.NoError(t, err)

	assert.True(t, yes.Test(nil, nil))
	assert.False(t, no.Test(nil, nil))
}

func TestCompile_Errors(t *testing.T) {
	c := &Compiler[*fighter, *spot]{
		Leaves: testRegistry(),
		Refs: map[string]Node{
			"loop_a": Ref("loop_b"),
			"loop_b": All(Leaf("alive"), Ref("loop_a")),
		},
	}

	tests := []struct {
		name string
		node Node
		code ErrorCode
		path string
	}{
		{"empty node", Node{}, CodeInvalidNode, "when"},
		{"two variants", Node{Leaf: "alive", CEL: "true"}, CodeInvalidNode, "when"},
		{"args on group", Node{All: []Node{}, Args: map[string]any{"x": 1}}, CodeInvalidNode, "when"},
		{"unknown leaf", All(Leaf("alive"), Leaf("flying")), CodeUnknownLeaf, "when.all[1]"},
		{"bad args", LeafWith("within", map[string]any{"max": "far"}), CodeLeafArgs, "when"},
		{"args on static", LeafWith("alive", map[string]any{"x": 1}), CodeLeafArgs, "when"},
		{"unknown ref", Not(Ref("nope")), CodeUnknownRef, "when.not"},
		{"ref cycle", Ref("loop_a"), CodeRefCycle, "loop_b.all[1]"},
		{"cel disabled", CEL("true"), CodeCEL, "when"},
	}
	for _, tc := range tests {
		tc := tc // per-iteration copy (go1.22 loopvar semantics)
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Compile("when", tc.node)
			require.Error(t, err)
			assert.True(t, IsCode(err, tc.code), "got %v", err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.path, ce.Path)
		})
	}
}

func TestCompileRef_SelfReference(t *testing.T) {
	c := &Compiler[*fighter, *spot]{
		Leaves: testRegistry(),
		Refs:   map[string]Node{"self": Any(Leaf("alive"), Ref("self"))},
	}

	_, err := c.CompileRef("self")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeRefCycle))
	assert.Contains(t, err.Error(), "self -> self")

	_, err = c.CompileRef("missing")
	assert.True(t, IsCode(err, CodeUnknownRef))
}

func TestCompile_Refs(t *testing.T) {
	c := &Compiler[*fighter, *spot]{
		Leaves: testRegistry(),
		Refs: map[string]Node{
			"healthy": Leaf("alive"),
			"can_step": All(Ref("healthy"), Leaf("walkable")),
		},
	}

	prog, err := c.CompileRef("can_step")
	require.NoError(t, err)

	assert.True(t, prog.Test(&fighter{hp: 3}, &spot{walkable: true}))
	assert.False(t, prog.Test(&fighter{hp: 0}, &spot{walkable: true}))

	_, steps := prog.Explain(&fighter{hp: 3}, &spot{walkable: true})
	assert.Equal(t, []Step{
		{Path: "healthy", Label: "leaf:alive", Result: true},
		{Path: "can_step.all[1]", Label: "leaf:walkable", Result: true},
	}, steps)
}

func TestExplain_RecordsOnlyEvaluatedLeaves(t *testing.T) {
	probe := testutil.Constant[*fighter, *spot](true)
	reg := testRegistry().Register("probe", Static[*fighter, *spot](probe))
	c := &Compiler[*fighter, *spot]{Leaves: reg}

	prog, err := c.Compile("when", All(Leaf("alive"), Leaf("probe")))
	require.NoError(t, err)

	result, steps := prog.Explain(&fighter{hp: 0}, &spot{})
	assert.False(t, result)
	assert.Equal(t, []Step{{Path: "when.all[0]", Label: "leaf:alive", Result: false}}, steps)
	assert.Equal(t, int64(0), probe.Calls(), "short-circuited leaf must not run")

	result, steps = prog.Explain(&fighter{hp: 1}, &spot{})
	assert.True(t, result)
	assert.Len(t, steps, 2)
	assert.Equal(t, int64(1), probe.Calls())

	prog.Test(&fighter{hp: 0}, &spot{})
	assert.Equal(t, int64(1), probe.Calls(), "compiled predicate short-circuits too")
}

func TestExplain_LabelsIncludeArgs(t *testing.T) {
	c := &Compiler[*fighter, *spot]{Leaves: testRegistry()}

	prog, err := c.Compile("when", Any(LeafWith("within", map[string]any{"max": 3}), Const(true)))
	require.NoError(t, err)

	_, steps := prog.Explain(&fighter{}, &spot{dist: 9})
	assert.Equal(t, []Step{
		{Path: "when.any[0]", Label: "leaf:within(max=3)", Result: false},
		{Path: "when.any[1]", Label: "const:true", Result: true},
	}, steps)
}

func TestCEL(t *testing.T) {
	c := &Compiler[*fighter, *spot]{Leaves: testRegistry(), CEL: testCEL(t)}

	prog, err := c.Compile("when", All(Leaf("alive"), CEL("cell.dist <= actor.reach")))
	require.NoError(t, err)

	assert.True(t, prog.Test(&fighter{hp: 1, reach: 2}, &spot{dist: 2}))
	assert.False(t, prog.Test(&fighter{hp: 1, reach: 2}, &spot{dist: 3}))
	assert.False(t, prog.Test(&fighter{hp: 0, reach: 9}, &spot{dist: 1}))

	_, steps := prog.Explain(&fighter{hp: 1, reach: 2}, &spot{dist: 3})
	require.Len(t, steps, 2)
	assert.Equal(t, "cel:cell.dist <= actor.reach", steps[1].Label)
}

func TestCEL_CompileErrors(t *testing.T) {
	c := &Compiler[*fighter, *spot]{CEL: testCEL(t)}

	_, err := c.Compile("when", CEL("actor.hp +"))
	assert.True(t, IsCode(err, CodeCEL), "syntax error: %v", err)

	_, err = c.Compile("when", CEL("1 + 2"))
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeCEL))
	assert.Contains(t, err.Error(), "must be boolean")

	_, err = c.Compile("when", CEL("ghost.hp > 0"))
	assert.True(t, IsCode(err, CodeCEL), "undeclared variable: %v", err)
}

func TestCEL_RuntimeErrorIsFalse(t *testing.T) {
	c := &Compiler[*fighter, *spot]{CEL: testCEL(t)}

	// "mana" is not in the activation, so evaluation errors at runtime.
	prog, err := c.Compile("when", CEL("actor.mana > 0"))
	require.NoError(t, err)
	assert.False(t, prog.Test(&fighter{hp: 1}, &spot{}))

	negated, err := c.Compile("when", Not(CEL("actor.mana > 0")))
	require.NoError(t, err)
	assert.True(t, negated.Test(&fighter{hp: 1}, &spot{}))
}

func TestNode_KindAndRefs(t *testing.T) {
	n := decode(t, `
any:
  - ref: healthy
  - all:
      - ref: near
      - not: { ref: healthy }
`)
	assert.Equal(t, KindAny, n.Kind())
	assert.Equal(t, []string{"healthy", "near"}, n.Refs())
	assert.Equal(t, KindInvalid, Node{}.Kind())
	assert.Equal(t, "ref:healthy", n.Any[0].Label())
}

func TestNode_Canonical(t *testing.T) {
	n := All(LeafWith("within", map[string]any{"max": 2}), Not(Const(false)))
	assert.Equal(t, map[string]any{
		"all": []any{
			map[string]any{"leaf": "within", "args": map[string]any{"max": 2}},
			map[string]any{"not": map[string]any{"const": false}},
		},
	}, n.Canonical())
}

func TestIntArg(t *testing.T) {
	for _, v := range []any{3, int64(3), float64(3)} {
		n, err := IntArg(map[string]any{"max": v}, "max")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	}

	_, err := IntArg(map[string]any{"max": 2.5}, "max")
	assert.Error(t, err)
	_, err = IntArg(nil, "max")
	assert.Error(t, err)
}
