package converters

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/storage/memory"
	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// fakeWeb answers HEAD with a status per URL and GET with a body per URL.
type fakeWeb struct {
	mu     sync.Mutex
	status map[string]int
	bodies map[string]string
	calls  []string
}

func (f *fakeWeb) Head(_ context.Context, url string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "HEAD "+url)
	status, ok := f.status[url]
	if !ok {
		return 0, errors.New("connection refused")
	}
	return status, nil
}

func (f *fakeWeb) Get(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "GET "+url)
	body, ok := f.bodies[url]
	if !ok {
		return "", errors.New("not found")
	}
	return body, nil
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func newTestRegistry(t *testing.T, web driven.WebClient) *Registry {
	t.Helper()
	r, err := NewDefaultRegistry(Dependencies{Web: web})
	require.NoError(t, err)
	return r
}

func convert(t *testing.T, r *Registry, spec domain.ConverterSpec, rec driven.Record) (*domain.FieldValues, error) {
	t.Helper()
	entry, err := r.Build(spec)
	require.NoError(t, err)
	out := domain.NewFieldValues()
	err = entry.Convert(context.Background(), rec, out)
	return out, err
}

func TestString_Verbatim(t *testing.T) {
	r := newTestRegistry(t, nil)
	spec := domain.ConverterSpec{Source: "Titel", Dest: "title", DestType: TagVerbatim}

	out, err := convert(t, r, spec, memory.NewRecord("Titel", "myTitle"))
	require.NoError(t, err)
	assert.Equal(t, []string{"myTitle"}, out.Get("title"))

	out, err = convert(t, r, spec, memory.NewRecord())
	require.NoError(t, err)
	assert.Zero(t, out.Len())
}

func TestString_LineBreakIsMulti(t *testing.T) {
	r := newTestRegistry(t, nil)
	rec := memory.NewRecord("Emneord", "toys\nanimals")

	out, err := convert(t, r, domain.ConverterSpec{
		Source: "Emneord", Dest: "keyword", DestType: TagString, LineBreakIsMulti: true,
	}, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"toys", "animals"}, out.Get("keyword"))

	out, err = convert(t, r, domain.ConverterSpec{
		Source: "Emneord", Dest: "keyword", DestType: TagString,
	}, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"toys\nanimals"}, out.Get("keyword"))
}

func TestString_LineBreakIsMulti_SkipsEmptyLines(t *testing.T) {
	r := newTestRegistry(t, nil)
	out, err := convert(t, r, domain.ConverterSpec{
		Source: "s", Dest: "d", DestType: TagString, LineBreakIsMulti: true,
	}, memory.NewRecord("s", "a\r\n\r\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Get("d"))
}

func TestString_Pattern(t *testing.T) {
	r := newTestRegistry(t, nil)

	tests := []struct {
		name        string
		pattern     string
		replacement string
		input       string
		want        []string
	}{
		{"whole match", ".+", "ds_x_$0", "foo", []string{"ds_x_foo"}},
		{"groups", "(\\d{4})-(\\d{2})", "$2/$1", "2019-10", []string{"10/2019"}},
		{"adjacent groups", "(a)(b)(c)", "$1$3_$2", "abc", []string{"ac_b"}},
		{"named group", "(?P<year>\\d{4}).*", "y${year}", "1897 ca.", []string{"y1897"}},
		{"escaped dollar", "(\\d+)", "\\$$1", "42", []string{"$42"}},
		{"greedy group number", "(a)", "$12", "a", []string{"a2"}},
		{"partial match dropped", "\\d+", "$0", "abc123", nil},
		{"no match dropped", "[0-9]+", "$0", "foo", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := convert(t, r, domain.ConverterSpec{
				Source: "s", Dest: "d", DestType: TagPattern,
				Pattern: tt.pattern, Replacement: strPtr(tt.replacement),
			}, memory.NewRecord("s", tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Get("d"))
		})
	}
}

func TestString_SourceKinds(t *testing.T) {
	r := newTestRegistry(t, nil)
	rec := memory.NewRecord("width", "640").
		SetAssetReference("Asset Reference", "Cumulus:/a.tif").
		AddRendition("Renditions", memory.Rendition{Name: "JPEG2000", State: "3", Asset: "jp2/a.jp2"}).
		AddRendition("Renditions", memory.Rendition{Name: "Web", State: "2", Asset: "web/a.jpg"})

	tests := []struct {
		name string
		spec domain.ConverterSpec
		want []string
	}{
		{
			name: "asset reference",
			spec: domain.ConverterSpec{Source: "Asset Reference", SourceType: domain.SourceAssetReference, Dest: "d", DestType: TagString},
			want: []string{"Cumulus:/a.tif"},
		},
		{
			name: "default rendition",
			spec: domain.ConverterSpec{Source: "Renditions", SourceType: domain.SourceRendition, Dest: "d", DestType: TagString},
			want: []string{"jp2/a.jp2"},
		},
		{
			name: "named rendition",
			spec: domain.ConverterSpec{
				Source: "Renditions", SourceType: domain.SourceRendition, Dest: "d", DestType: TagString,
				RenditionName: "Web", RenditionState: "2",
			},
			want: []string{"web/a.jpg"},
		},
		{
			name: "integer as text",
			spec: domain.ConverterSpec{Source: "width", SourceType: domain.SourceInteger, Dest: "d", DestType: TagString},
			want: []string{"640"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := convert(t, r, tt.spec, rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Get("d"))
		})
	}
}

func TestPolicy_Required(t *testing.T) {
	r := newTestRegistry(t, nil)
	spec := domain.ConverterSpec{Source: "År", Dest: "datetime", DestType: TagDatetime, Required: true}

	_, err := convert(t, r, spec, memory.NewRecord())
	assert.ErrorIs(t, err, domain.ErrMissingRequired)

	_, err = convert(t, r, spec, memory.NewRecord("År", "sometime"))
	assert.ErrorIs(t, err, domain.ErrMissingRequired)
	assert.True(t, domain.IsRecordError(err))

	out, err := convert(t, r, spec, memory.NewRecord("År", "2019"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2019-01-01T00:00:00Z"}, out.Get("datetime"))
}

func TestPolicy_Fallback(t *testing.T) {
	r := newTestRegistry(t, nil)
	spec := domain.ConverterSpec{
		Source: "År", Dest: "datetime", FallbackDest: "datetime_verbatim", DestType: TagDatetimeRange,
	}

	out, err := convert(t, r, spec, memory.NewRecord("År", "1838 eller 1898"))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
	assert.Equal(t, []string{"1838 eller 1898"}, out.Get("datetime_verbatim"))
	assert.Empty(t, out.Get("datetime"))

	out, err = convert(t, r, spec, memory.NewRecord("År", "1897-98"))
	require.NoError(t, err)
	assert.Equal(t, []string{"[1897 TO 1898]"}, out.Get("datetime"))
	assert.Empty(t, out.Get("datetime_verbatim"))

	out, err = convert(t, r, spec, memory.NewRecord())
	require.NoError(t, err)
	assert.Zero(t, out.Len())
}

func TestPolicy_UnparseableWithoutFallback(t *testing.T) {
	r := newTestRegistry(t, nil)
	out, err := convert(t, r, domain.ConverterSpec{
		Source: "År", Dest: "datetime", DestType: TagDatetime,
	}, memory.NewRecord("År", "unknown"))
	require.NoError(t, err)
	assert.Zero(t, out.Len())
}

func TestDatetime_MultiLine(t *testing.T) {
	r := newTestRegistry(t, nil)
	out, err := convert(t, r, domain.ConverterSpec{
		Source: "År", Dest: "datetime", DestType: TagDatetimeRange, LineBreakIsMulti: true,
	}, memory.NewRecord("År", "1972-1979\nnonsense\n2019-10"))
	require.NoError(t, err)
	assert.Equal(t, []string{"[1972 TO 1979]", "2019-10"}, out.Get("datetime"))
}

func TestNumeric(t *testing.T) {
	r := newTestRegistry(t, nil)

	tests := []struct {
		name    string
		spec    domain.ConverterSpec
		rec     *memory.Record
		want    []string
		wantErr error
	}{
		{
			name: "integer accessor",
			spec: domain.ConverterSpec{Source: "w", Dest: "width", DestType: TagInteger},
			rec:  memory.NewRecord("w", "640"),
			want: []string{"640"},
		},
		{
			name:    "integer overflow fails the record",
			spec:    domain.ConverterSpec{Source: "w", Dest: "width", DestType: TagInteger},
			rec:     memory.NewRecord("w", "9876543210"),
			wantErr: domain.ErrInvalidValue,
		},
		{
			name: "long accessor",
			spec: domain.ConverterSpec{Source: "s", Dest: "size", DestType: TagLong},
			rec:  memory.NewRecord("s", "9876543210"),
			want: []string{"9876543210"},
		},
		{
			name:    "absent required long",
			spec:    domain.ConverterSpec{Source: "s", Dest: "size", DestType: TagLong, Required: true},
			rec:     memory.NewRecord(),
			wantErr: domain.ErrMissingRequired,
		},
		{
			name: "lenient text",
			spec: domain.ConverterSpec{Source: "w", SourceType: domain.SourceString, Dest: "width", DestType: TagInteger},
			rec:  memory.NewRecord("w", "640px"),
		},
		{
			name: "lenient text with fallback",
			spec: domain.ConverterSpec{
				Source: "w", SourceType: domain.SourceString, Dest: "width", FallbackDest: "width_text", DestType: TagInteger,
			},
			rec:  memory.NewRecord("w", "640px"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := convert(t, r, tt.spec, tt.rec)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Get(tt.spec.Dest))
			if tt.spec.FallbackDest != "" {
				assert.Equal(t, []string{"640px"}, out.Get(tt.spec.FallbackDest))
			}
		})
	}
}

func TestNumeric_RejectsReferenceSource(t *testing.T) {
	r := newTestRegistry(t, nil)
	_, err := r.Build(domain.ConverterSpec{
		Source: "a", SourceType: domain.SourceAssetReference, Dest: "d", DestType: TagLong,
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestURL(t *testing.T) {
	web := &fakeWeb{status: map[string]int{
		"http://images/a.jp2":      http.StatusOK,
		"http://images/missing":    http.StatusNotFound,
		"http://iiif/a/info.json":  http.StatusOK,
		"http://images/redirected": http.StatusFound,
	}}
	r := newTestRegistry(t, web)

	base := domain.ConverterSpec{
		Source: "path", Dest: "image", FallbackDest: "image_path", DestType: TagURL,
		Pattern: ".*/([^/]+)", Replacement: strPtr("http://images/$1"),
	}

	tests := []struct {
		name         string
		mutate       func(*domain.ConverterSpec)
		input        string
		want         []string
		wantFallback []string
	}{
		{name: "verified", input: "Cumulus:/x/a.jp2", want: []string{"Cumulus:/x/a.jp2"}},
		{name: "not found", input: "Cumulus:/x/missing", wantFallback: []string{"Cumulus:/x/missing"}},
		{name: "redirect is not ok", input: "Cumulus:/x/redirected", wantFallback: []string{"Cumulus:/x/redirected"}},
		{name: "unreachable", input: "Cumulus:/x/other", wantFallback: []string{"Cumulus:/x/other"}},
		{name: "pattern mismatch passes through", input: "no-slash", want: []string{"no-slash"}},
		{
			name:   "verification disabled",
			mutate: func(s *domain.ConverterSpec) { s.VerifyURL = boolPtr(false) },
			input:  "Cumulus:/x/other",
			want:   []string{"Cumulus:/x/other"},
		},
		{
			name:   "verification disabled and pattern mismatch",
			mutate: func(s *domain.ConverterSpec) { s.VerifyURL = boolPtr(false) },
			input:  "no-slash",
			want:   []string{"no-slash"},
		},
		{
			name: "verify pattern emits original",
			mutate: func(s *domain.ConverterSpec) {
				s.VerifyPattern = "http://images/(.+)\\.jp2"
				s.VerifyReplacement = strPtr("http://iiif/$1/info.json")
			},
			input: "Cumulus:/x/a.jp2",
			want:  []string{"Cumulus:/x/a.jp2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base
			if tt.mutate != nil {
				tt.mutate(&spec)
			}
			out, err := convert(t, r, spec, memory.NewRecord("path", tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Get("image"))
			assert.Equal(t, tt.wantFallback, out.Get("image_path"))
		})
	}
}

func TestURL_PatternMismatchSkipsVerification(t *testing.T) {
	web := &fakeWeb{status: map[string]int{}}
	r := newTestRegistry(t, web)
	spec := domain.ConverterSpec{
		Source: "path", Dest: "image", DestType: TagURL,
		Pattern: ".*/([^/]+)", Replacement: strPtr("http://images/$1"),
	}

	out, err := convert(t, r, spec, memory.NewRecord("path", "no-slash"))
	require.NoError(t, err)
	assert.Equal(t, []string{"no-slash"}, out.Get("image"))
	assert.Empty(t, web.calls)

	out, err = convert(t, r, spec, memory.NewRecord("path", "Cumulus:/x/b.jp2"))
	require.NoError(t, err)
	assert.Empty(t, out.Get("image"))
	assert.Equal(t, []string{"HEAD http://images/b.jp2"}, web.calls)
}

func TestURL_NeedsWebClient(t *testing.T) {
	r := newTestRegistry(t, nil)
	_, err := r.Build(domain.ConverterSpec{Source: "p", Dest: "d", DestType: TagURL})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = r.Build(domain.ConverterSpec{Source: "p", Dest: "d", DestType: TagURL, VerifyURL: boolPtr(false)})
	assert.NoError(t, err)
}

func TestExternal(t *testing.T) {
	web := &fakeWeb{bodies: map[string]string{
		"http://svc/lookup?id=42": "<name>Hans</name>",
		"http://svc/lookup?id=7":  "plain",
	}}
	r := newTestRegistry(t, web)

	spec := domain.ConverterSpec{
		Source: "id", Dest: "name", DestType: TagExternal,
		ExternalService: "http://svc/lookup?id=$1",
		ExtPattern:      "<name>(.*)</name>", ExtReplacement: strPtr("$1"),
	}

	out, err := convert(t, r, spec, memory.NewRecord("id", "42"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hans"}, out.Get("name"))

	out, err = convert(t, r, spec, memory.NewRecord("id", "7"))
	require.NoError(t, err)
	assert.Zero(t, out.Len())

	out, err = convert(t, r, spec, memory.NewRecord("id", "99"))
	require.NoError(t, err)
	assert.Zero(t, out.Len())

	raw := spec
	raw.ExtPattern, raw.ExtReplacement = "", nil
	out, err = convert(t, r, raw, memory.NewRecord("id", "7"))
	require.NoError(t, err)
	assert.Equal(t, []string{"plain"}, out.Get("name"))
}

func TestBuild_ConfigErrors(t *testing.T) {
	r := newTestRegistry(t, &fakeWeb{})

	tests := []struct {
		name string
		spec domain.ConverterSpec
		want error
	}{
		{"unknown dest type", domain.ConverterSpec{Source: "s", Dest: "d", DestType: "bool"}, domain.ErrUnsupportedType},
		{"missing source", domain.ConverterSpec{Dest: "d", DestType: TagString}, domain.ErrInvalidConfig},
		{"missing dest", domain.ConverterSpec{Source: "s", DestType: TagString}, domain.ErrInvalidConfig},
		{"unknown source type", domain.ConverterSpec{Source: "s", SourceType: "blob", Dest: "d", DestType: TagString}, domain.ErrUnsupportedType},
		{"pattern without replacement", domain.ConverterSpec{Source: "s", Dest: "d", DestType: TagString, Pattern: ".*"}, domain.ErrInvalidConfig},
		{"replacement without pattern", domain.ConverterSpec{Source: "s", Dest: "d", DestType: TagString, Replacement: strPtr("x")}, domain.ErrInvalidConfig},
		{"bad regexp", domain.ConverterSpec{Source: "s", Dest: "d", DestType: TagString, Pattern: "(", Replacement: strPtr("x")}, domain.ErrInvalidConfig},
		{"missing group", domain.ConverterSpec{Source: "s", Dest: "d", DestType: TagString, Pattern: "(a)", Replacement: strPtr("$2")}, domain.ErrInvalidConfig},
		{"dangling dollar", domain.ConverterSpec{Source: "s", Dest: "d", DestType: TagString, Pattern: "a", Replacement: strPtr("x$")}, domain.ErrInvalidConfig},
		{"unknown group name", domain.ConverterSpec{Source: "s", Dest: "d", DestType: TagString, Pattern: "a", Replacement: strPtr("${n}")}, domain.ErrInvalidConfig},
		{"external without placeholder", domain.ConverterSpec{Source: "s", Dest: "d", DestType: TagExternal, ExternalService: "http://svc/"}, domain.ErrInvalidConfig},
		{"verify pattern without replacement", domain.ConverterSpec{Source: "s", Dest: "d", DestType: TagURL, VerifyPattern: ".*"}, domain.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Build(tt.spec)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEntry_Concurrent(t *testing.T) {
	r := newTestRegistry(t, nil)
	entry, err := r.Build(domain.ConverterSpec{
		Source: "s", Dest: "d", DestType: TagPattern, Pattern: "(\\w+)", Replacement: strPtr("x_$1"),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := domain.NewFieldValues()
			assert.NoError(t, entry.Convert(context.Background(), memory.NewRecord("s", "abc"), out))
			assert.Equal(t, []string{"x_abc"}, out.Get("d"))
		}()
	}
	wg.Wait()
}
