package solr

import (
	"bytes"
	"context"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

func doc(kv ...string) *domain.FieldValues {
	out := domain.NewFieldValues()
	for i := 0; i < len(kv); i += 2 {
		out.Add(kv[i], kv[i+1])
	}
	return out
}

func TestWriter_Layout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	ctx := context.Background()

	require.NoError(t, w.Write(ctx, doc("id", "1", "title", "myTitle", "keyword", "a", "keyword", "b")))
	require.NoError(t, w.Write(ctx, doc("id", "2")))
	require.NoError(t, w.Close(ctx))

	want := `<?xml version="1.0" encoding="UTF-8"?>
<add>
  <doc>
    <field name="id">1</field>
    <field name="title">myTitle</field>
    <field name="keyword">a</field>
    <field name="keyword">b</field>
  </doc>
  <doc>
    <field name="id">2</field>
  </doc>
</add>
`
	assert.Equal(t, want, buf.String())
}

func TestWriter_Escaping(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(context.Background(), doc("title", `Tom & "Jerry" <1950>`)))
	require.NoError(t, w.Close(context.Background()))

	var parsed struct {
		Docs []struct {
			Fields []struct {
				Name  string `xml:"name,attr"`
				Value string `xml:",chardata"`
			} `xml:"field"`
		} `xml:"doc"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed.Docs, 1)
	assert.Equal(t, `Tom & "Jerry" <1950>`, parsed.Docs[0].Fields[0].Value)
}

func TestWriter_EmptyRun(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, w.Close(context.Background()))

	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<add>\n</add>\n", buf.String())
}

func TestWriter_WriteAfterClose(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	require.NoError(t, w.Close(context.Background()))
	assert.ErrorIs(t, w.Write(context.Background(), doc("id", "1")), domain.ErrInvalidInput)
}
