package snapfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codesnap/geometry"
	"codesnap/snap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnap() *snap.Snap {
	s := snap.NewSnap()
	s.Meta.Title = "Release notes"
	code := snap.NewCodeElement(100, 100)
	code.Code.Highlights = []int{2, 3}
	arrow := snap.NewArrowElement(10, 10)
	arrow.Arrow.Style = snap.ArrowCurved
	arrow.Arrow.ControlPoints = []geometry.Point{{X: 50, Y: 0}}
	text := snap.NewTextElement(20, 20)
	text.Visible = false
	group := snap.Element{
		ID:       "grp",
		Type:     snap.TypeGroup,
		X:        300,
		Y:        300,
		Width:    200,
		Height:   200,
		Visible:  true,
		Group:    &snap.GroupProps{},
		Elements: []snap.Element{snap.NewShapeElement(snap.ShapeStar, 0, 0)},
	}
	s.Elements = append(s.Elements, code, arrow, text, group)
	s.Background.Type = snap.BackgroundGradient
	s.Background.Branding = &snap.Branding{Enabled: true, Name: "Jo", Handle: "@jo", Position: "bottom-right"}
	return s
}

func TestExportImportRoundTrip(t *testing.T) {
	s := sampleSnap()
	data, err := Export(s)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "}\n"))
	assert.Contains(t, string(data), "\n  \"version\"")

	back, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, s, back)

	again, err := Export(back)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestImportMalformed(t *testing.T) {
	for name, in := range map[string]string{
		"syntax":     `{"version": "1.1", "meta": `,
		"array":      `[1, 2, 3]`,
		"string":     `"hello"`,
		"wrong type": `{"meta": {"width": "wide"}}`,
		"elements":   `{"elements": {"id": "a"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Import([]byte(in))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}

	_, err := Import([]byte("  \n"))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestImportFractionalCanvasSize(t *testing.T) {
	s, err := Import([]byte(`{"meta":{"title":"t","aspect":"16:9","width":1920.5,"height":1079.6}}`))
	require.NoError(t, err)
	assert.Equal(t, 1921, s.Meta.Width)
	assert.Equal(t, 1080, s.Meta.Height)
	assert.Equal(t, "Custom 1921x1080", s.Meta.Aspect)

	s, err = Import([]byte(`{"meta":{"width":1e12,"height":12.25}}`))
	require.NoError(t, err)
	assert.Equal(t, snap.MaxCanvasSize, s.Meta.Width)
	assert.Equal(t, snap.MinCanvasSize, s.Meta.Height)
}

func TestDecodeFillsDefaults(t *testing.T) {
	s, rep, err := Decode([]byte(`{"elements":[{"id":"a","type":"text","x":1,"y":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, snap.CurrentVersion, s.Version)
	assert.Equal(t, 320, s.Meta.Width)
	assert.Equal(t, "#1e1e2e", s.Background.Solid.Color)
	require.Len(t, s.Elements, 1)
	assert.True(t, s.Elements[0].Visible)
	assert.NotNil(t, s.Elements[0].Text)
	assert.Empty(t, rep.SourceVersion)
	assert.NotEmpty(t, rep.Warnings)
}

func TestDecodeUnknownVersionIsBestEffort(t *testing.T) {
	in := `{"version":"9.0","meta":{"title":"Future","aspect":"1:1","width":1080,"height":1080},
		"elements":[{"id":"x","type":"hologram","x":0,"y":0,"props":{"depth":3}},
		{"id":"c","type":"code","x":0,"y":0,"width":400,"height":200,"props":{"code":"fmt.Println()","language":"go"}}]}`
	s, rep, err := Decode([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, "9.0", rep.SourceVersion)
	assert.Equal(t, "9.0", s.Version)
	assert.Len(t, rep.Warnings, 2)
	require.Len(t, s.Elements, 2)
	assert.JSONEq(t, `{"depth":3}`, string(s.Elements[0].RawProps))
	assert.Equal(t, "fmt.Println()", s.Elements[1].Code.Code)
	assert.Equal(t, []int{}, s.Elements[1].Code.Highlights)

	out, err := Export(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"hologram"`)
}

func TestDecodeRepairsDuplicateIDs(t *testing.T) {
	in := `{"elements":[{"id":"a","type":"text"},{"id":"a","type":"text"}]}`
	s, rep, err := Decode([]byte(in))
	require.NoError(t, err)
	assert.NotEqual(t, s.Elements[0].ID, s.Elements[1].ID)
	assert.NoError(t, snap.Validate(s))
	assert.Contains(t, strings.Join(rep.Warnings, "\n"), "duplicate")
}

func TestWriteAndReadFile(t *testing.T) {
	dir := t.TempDir()
	s := sampleSnap()

	path, err := WriteFile(filepath.Join(dir, "nested", "demo"), s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "demo.snap"), path)

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	back, _, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s, back)

	_, _, err = ReadFile(filepath.Join(dir, "missing.snap"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCapAssets(t *testing.T) {
	big := "data:image/png;base64," + strings.Repeat("A", 4000)
	small := "data:image/png;base64,AAAA"

	s := snap.NewSnap()
	s.Elements = append(s.Elements,
		snap.NewImageElement(0, 0, big, 10, 10),
		snap.NewImageElement(0, 0, small, 10, 10),
		snap.NewImageElement(0, 0, "https://example.com/large.png", 10, 10),
	)
	s.Background.Branding = &snap.Branding{Enabled: true, Avatar: big, ShowAvatar: true}

	dropped := CapAssets(s, Policy{MaxAssetBytes: 1024})
	require.Len(t, dropped, 2)
	assert.Equal(t, s.Elements[0].ID, dropped[0].ElementID)
	assert.Equal(t, 3000, dropped[0].Bytes)
	assert.Equal(t, "branding.avatar", dropped[1].Field)

	assert.Empty(t, s.Elements[0].Image.Src)
	assert.Equal(t, small, s.Elements[1].Image.Src)
	assert.Equal(t, "https://example.com/large.png", s.Elements[2].Image.Src)
	assert.False(t, s.Background.Branding.ShowAvatar)
	assert.True(t, s.Background.Branding.Enabled)

	assert.Nil(t, CapAssets(s, Policy{}))
}

func TestDataURLSize(t *testing.T) {
	assert.Equal(t, 3, DataURLSize("data:image/png;base64,AAAA"))
	assert.Equal(t, 1, DataURLSize("data:image/png;base64,AA=="))
	assert.Equal(t, 5, DataURLSize("data:text/plain,hello"))
	assert.Equal(t, 0, DataURLSize("https://x/y.png"))
	assert.Equal(t, 0, DataURLSize("data:broken"))
}
