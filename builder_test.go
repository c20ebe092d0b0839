package params_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	params "github.com/kpe/go-params"
)

func TestBuilder_ExplicitTypeMustAcceptDefault(t *testing.T) {
	_, err := params.Declare("Bad").
		Field("flag", params.Spec{Default: 2, Type: params.Bool}).
		Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, params.ErrDeclaration))

	iss, ok := params.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, params.CodeInvalidType, iss[0].Code)
	assert.Equal(t, "/flag", iss[0].Path)

	var de *params.DeclarationError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Bad", de.Class)

	assert.Panics(t, func() {
		params.Declare("Bad").Field("flag", 2).Type(params.Bool).MustBuild()
	})
}

func TestBuilder_NilDefaultAcceptedByAnyType(t *testing.T) {
	c, err := params.Declare("Nil").Field("name", nil).Type(params.String).Build()
	require.NoError(t, err)
	f, _ := c.Field("name")
	assert.Equal(t, params.String, f.Type)
	assert.Nil(t, f.Default)
}

func TestBuilder_TypeInference(t *testing.T) {
	c := params.Declare("Inferred").
		Field("b", true).
		Field("i", 3).
		Field("f", 0.5).
		Field("s", "x").
		Field("d", time.Second).
		Field("l", []string{"a"}).
		Field("n", nil).
		MustBuild()

	want := map[string]params.Type{
		"b": params.Bool, "i": params.Int, "f": params.Float, "s": params.String,
		"d": params.Duration, "l": params.Strings, "n": params.Any,
	}
	for name, typ := range want {
		f, ok := c.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, typ, f.Type, name)
		assert.Equal(t, params.Stored, f.Kind(), name)
	}
}

func TestBuilder_ReservedNames(t *testing.T) {
	for _, name := range []string{"", "_hidden"} {
		_, err := params.Declare("Reserved").Field(name, 1).Build()
		require.Error(t, err, "name %q", name)
		iss, ok := params.AsIssues(err)
		require.True(t, ok)
		assert.Equal(t, params.CodeReservedName, iss[0].Code)
	}
}

func TestBuilder_NilParentAndNilDerive(t *testing.T) {
	_, err := params.Declare("Orphan", nil).Build()
	assert.ErrorIs(t, err, params.ErrDeclaration)

	_, err = params.Declare("NoFn").Derived("x", nil).Build()
	assert.ErrorIs(t, err, params.ErrDeclaration)
}

func TestBuilder_RedeclarationReplacesInPlace(t *testing.T) {
	c := params.Declare("Redeclared").
		Field("a", 1).
		Field("b", 2).
		Field("a", 3).
		MustBuild()
	assert.Equal(t, []string{"a", "b"}, c.Names())
	v, _ := c.Default("a")
	assert.Equal(t, 3, v)
}

func TestBuilder_SpecMetadata(t *testing.T) {
	c := params.Declare("Meta").
		Field("input", params.Spec{Default: "in.txt", Doc: "input file", Positional: true}).
		Field("level", 1).Doc("verbosity").Required().
		MustBuild()

	in, _ := c.Field("input")
	assert.Equal(t, "input file", in.Doc)
	assert.True(t, in.Positional)
	assert.Equal(t, params.String, in.Type)
	assert.Same(t, c, in.Owner)

	lvl, _ := c.Field("level")
	assert.Equal(t, "verbosity", lvl.Doc)
	assert.True(t, lvl.Required)

	p := params.Param(5)
	assert.Equal(t, 5, p.Default)
}

type serverConfig struct {
	Host    string        `params:"host,required" doc:"listen host"`
	Port    int           `json:"port"`
	Timeout time.Duration `params:"timeout,positional"`
	Secret  string        `params:"-"`
	Tags    []string
	hidden  int
}

func TestBuilder_Struct(t *testing.T) {
	c := params.Declare("Server").
		Struct(serverConfig{Host: "localhost", Port: 8080, Timeout: time.Second, hidden: 1}).
		MustBuild()

	assert.Equal(t, []string{"host", "port", "timeout", "Tags"}, c.Names())
	host, _ := c.Field("host")
	assert.True(t, host.Required)
	assert.Equal(t, "listen host", host.Doc)
	timeout, _ := c.Field("timeout")
	assert.True(t, timeout.Positional)
	assert.Equal(t, params.Duration, timeout.Type)

	_, err := params.Declare("NotAStruct").Struct(3).Build()
	assert.ErrorIs(t, err, params.ErrDeclaration)
}

func TestDecode(t *testing.T) {
	c := params.Declare("Server").Struct(serverConfig{Host: "localhost", Port: 8080}).MustBuild()
	p := c.MustNew(params.KV("port", 9090), params.KV("Tags", []string{"a", "b"}))

	var out serverConfig
	require.NoError(t, params.Decode(p, &out))
	assert.Equal(t, serverConfig{Host: "localhost", Port: 9090, Tags: []string{"a", "b"}}, out)

	assert.Error(t, params.Decode(p, out))

	bad := c.MustNew(params.KV("host", 12))
	assert.Error(t, params.Decode(bad, &out))
}
