package codec_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	params "github.com/kpe/go-params"
	"github.com/kpe/go-params/codec"
)

var someParams = params.Declare("SomeParams").
	Field("param_a", 1).
	Field("name", "svc").
	Field("ratio", 0.5).
	Field("enabled", true).
	Field("timeout", 2*time.Second).
	Field("tags", []string{"x", "y"}).
	Field("extra", nil).
	Derived("label", func(p *params.Params) any { return p.Value("name").(string) + "!" }).
	MustBuild()

func TestJSON_MarshalFormat(t *testing.T) {
	c := params.Declare("Small").Field("b", 2).Field("a", "x").MustBuild()
	b, err := codec.Marshal(c.MustNew(), codec.JSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": \"x\",\n  \"b\": 2\n}\n", string(b))
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []codec.Format{codec.JSON, codec.YAML} {
		t.Run(f.Name(), func(t *testing.T) {
			orig := someParams.MustNew(
				params.KV("param_a", 7),
				params.KV("ratio", 2.0),
				params.KV("extra", "free"),
			)
			data, err := codec.Marshal(orig, f)
			require.NoError(t, err)

			got, err := codec.Unmarshal(someParams, data, f, params.UnknownStrict)
			require.NoError(t, err)
			assert.True(t, orig.Equal(got), "want %v, got %v", orig, got)
			assert.Equal(t, "svc!", got.Value("label"))
		})
	}
}

func TestJSON_MarshalWritesDurationText(t *testing.T) {
	b, err := codec.Marshal(someParams.MustNew(), codec.JSON)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"timeout": "2s"`)
}

func TestYAML_MarshalKeepsSchemaOrder(t *testing.T) {
	b, err := codec.Marshal(someParams.MustNew(), codec.YAML)
	require.NoError(t, err)
	s := string(b)
	order := []string{"param_a:", "name:", "ratio:", "enabled:", "timeout:", "tags:", "extra:", "label:"}
	last := -1
	for _, key := range order {
		i := strings.Index(s, key)
		require.GreaterOrEqual(t, i, 0, key)
		assert.Greater(t, i, last, key)
		last = i
	}
	assert.Contains(t, s, "timeout: 2s")
}

func TestUnmarshal_UnknownPolicy(t *testing.T) {
	data := []byte(`{"param_a": 3, "unused": true}`)

	_, err := codec.Unmarshal(someParams, data, codec.JSON, params.UnknownStrict)
	require.Error(t, err)
	assert.ErrorIs(t, err, params.ErrUnknownField)
	var ufe *params.UnknownFieldError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "unused", ufe.Key)

	p, err := codec.Unmarshal(someParams, data, codec.JSON, params.UnknownStrip)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Value("param_a"))
}

func TestUnmarshal_CoercesToFieldType(t *testing.T) {
	p, err := codec.Unmarshal(someParams, []byte(`
param_a: 4.0
ratio: 3
enabled: "yes"
timeout: 1m
tags: [a, b]
extra: {nested: [1, 2.5]}
`), codec.YAML, params.UnknownStrict)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Value("param_a"))
	assert.Equal(t, 3.0, p.Value("ratio"))
	assert.Equal(t, true, p.Value("enabled"))
	assert.Equal(t, time.Minute, p.Value("timeout"))
	assert.Equal(t, []string{"a", "b"}, p.Value("tags"))
	assert.Equal(t, map[string]any{"nested": []any{1, 2.5}}, p.Value("extra"))

	p, err = codec.Unmarshal(someParams, []byte(`{"param_a": 5, "extra": [1, 2.5], "timeout": 1000}`), codec.JSON, params.UnknownStrict)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Value("param_a"))
	assert.Equal(t, []any{1, 2.5}, p.Value("extra"))
	assert.Equal(t, time.Microsecond, p.Value("timeout"))
}

func TestUnmarshal_TypeMismatch(t *testing.T) {
	_, err := codec.Unmarshal(someParams, []byte(`{"param_a": "many", "enabled": "maybe"}`), codec.JSON, params.UnknownStrict)
	require.Error(t, err)
	iss, ok := params.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 2)
	assert.Equal(t, params.CodeInvalidType, iss[0].Code)
	assert.Equal(t, "/param_a", iss[0].Path)
	assert.Equal(t, "/enabled", iss[1].Path)
}

func TestUnmarshal_IntOverflow(t *testing.T) {
	for _, tt := range []struct {
		f    codec.Format
		data string
	}{
		{codec.JSON, `{"param_a": 1e20}`},
		{codec.JSON, `{"param_a": -1e19}`},
		{codec.YAML, "param_a: 1e20\n"},
	} {
		t.Run(tt.f.Name()+"/"+tt.data, func(t *testing.T) {
			_, err := codec.Unmarshal(someParams, []byte(tt.data), tt.f, params.UnknownStrict)
			iss, ok := params.AsIssues(err)
			require.True(t, ok, "expected issues, got %v", err)
			assert.Equal(t, params.CodeInvalidType, iss[0].Code)
			assert.Equal(t, "/param_a", iss[0].Path)
		})
	}

	p, err := codec.Unmarshal(someParams, []byte(`{"param_a": 1e3}`), codec.JSON, params.UnknownStrict)
	require.NoError(t, err)
	assert.Equal(t, 1000, p.Value("param_a"))
}

func TestUnmarshal_DuplicateKeys(t *testing.T) {
	_, err := codec.Unmarshal(someParams, []byte(`{"param_a": 1, "param_a": 2}`), codec.JSON, params.UnknownStrict)
	iss, ok := params.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, params.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/param_a", iss[0].Path)

	_, err = codec.Unmarshal(someParams, []byte("param_a: 1\nname: a\nparam_a: 2\n"), codec.YAML, params.UnknownStrict)
	iss, ok = params.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, params.CodeDuplicateKey, iss[0].Code)
	var dke *codec.DuplicateKeyError
	require.True(t, errors.As(iss[0].Cause, &dke))
	assert.Equal(t, "param_a", dke.Key)
	assert.Equal(t, 1, dke.FirstLine)
	assert.Equal(t, 3, dke.Line)

	_, err = codec.Unmarshal(someParams, []byte("extra:\n  k: 1\n  k: 2\n"), codec.YAML, params.UnknownStrict)
	iss, ok = params.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, params.CodeDuplicateKey, iss[0].Code)
}

func TestUnmarshal_MalformedInput(t *testing.T) {
	tests := []struct {
		name string
		f    codec.Format
		data string
		code string
	}{
		{"json syntax", codec.JSON, `{"param_a": `, params.CodeParseError},
		{"json array", codec.JSON, `[1, 2]`, params.CodeInvalidType},
		{"json trailing", codec.JSON, `{} {}`, params.CodeParseError},
		{"yaml sequence", codec.YAML, "- a\n- b\n", params.CodeInvalidType},
		{"yaml syntax", codec.YAML, "a: [1, 2\n", params.CodeParseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Unmarshal(someParams, []byte(tt.data), tt.f, params.UnknownStrict)
			require.Error(t, err)
			iss, ok := params.AsIssues(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, iss[0].Code)
		})
	}
}

func TestUnmarshal_EmptyDocuments(t *testing.T) {
	p, err := codec.Unmarshal(someParams, []byte(`{}`), codec.JSON, params.UnknownStrict)
	require.NoError(t, err)
	assert.True(t, someParams.MustNew().Equal(p))

	p, err = codec.Unmarshal(someParams, []byte(""), codec.YAML, params.UnknownStrict)
	require.NoError(t, err)
	assert.True(t, someParams.MustNew().Equal(p))
}

func TestForPath(t *testing.T) {
	for path, name := range map[string]string{"a.json": "json", "a.YAML": "yaml", "dir/a.yml": "yaml"} {
		f, err := codec.ForPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, name, f.Name())
	}
	_, err := codec.ForPath("a.toml")
	assert.Error(t, err)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	orig := someParams.MustNew(params.KV("name", "über"))
	for _, file := range []string{"p.json", "p.yaml"} {
		path := filepath.Join(dir, file)
		require.True(t, codec.WriteFile(orig, path, codec.WithLogger(logger)))

		got, err := codec.ReadFile(someParams, path, params.UnknownStrict, codec.WithLogger(logger))
		require.NoError(t, err)
		assert.True(t, orig.Equal(got))
	}

	raw, err := os.ReadFile(filepath.Join(dir, "p.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"über"`)

	// explicit format wins over the extension
	path := filepath.Join(dir, "params.txt")
	require.True(t, codec.WriteFile(orig, path, codec.WithFormat(codec.YAML)))
	got, err := codec.ReadFile(someParams, path, params.UnknownStrict, codec.WithFormat(codec.YAML))
	require.NoError(t, err)
	assert.True(t, orig.Equal(got))
	assert.Contains(t, logs.String(), "Stored parameters")
}

func TestFiles_IOFailures(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	dir := t.TempDir()

	p, err := codec.ReadFile(someParams, filepath.Join(dir, "missing.json"), params.UnknownStrict, codec.WithLogger(logger))
	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.Contains(t, logs.String(), "Failed to read parameters")

	ok := codec.WriteFile(someParams.MustNew(), filepath.Join(dir, "no", "such", "dir.json"), codec.WithLogger(logger))
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "Failed to write parameters")

	assert.False(t, codec.WriteFile(someParams.MustNew(), filepath.Join(dir, "p.ini"), codec.WithLogger(logger)))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"nope": 1}`), 0o644))
	_, err = codec.ReadFile(someParams, bad, params.UnknownStrict, codec.WithLogger(logger))
	assert.ErrorIs(t, err, params.ErrUnknownField)
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader("param_a: 9\ntags: [q]\n")))
	v.Set("enabled", "no")

	p, err := codec.FromViper(someParams, v, params.UnknownStrict)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Value("param_a"))
	assert.Equal(t, false, p.Value("enabled"))
	assert.Equal(t, []string{"q"}, p.Value("tags"))
	assert.Equal(t, "svc", p.Value("name"))

	v.Set("stray", 1)
	_, err = codec.FromViper(someParams, v, params.UnknownStrict)
	assert.ErrorIs(t, err, params.ErrUnknownField)

	p, err = codec.FromViper(someParams, v, params.UnknownStrip)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Value("param_a"))
}
