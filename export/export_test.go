package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"regexp"
	"testing"

	"photomark/shape"
)

type solid struct{ w, h int }

func (s solid) Snapshot() image.Image {
	if s.w == 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func TestExportImage(t *testing.T) {
	tests := []struct {
		name    string
		src     Snapshotter
		opts    Options
		want    string
		wantErr error
	}{
		{name: "quality too high", src: solid{8, 8}, opts: Options{Format: FormatJPEG, Quality: Quality(1.5)}, wantErr: ErrQualityRange},
		{name: "quality negative", src: solid{8, 8}, opts: Options{Format: FormatJPEG, Quality: Quality(-0.1)}, wantErr: ErrQualityRange},
		{name: "no surface", src: nil, opts: Options{Format: FormatPNG}, wantErr: ErrNoSurface},
		{name: "empty surface", src: solid{}, opts: Options{Format: FormatPNG}, wantErr: ErrNoSurface},
		{name: "bad format", src: solid{8, 8}, opts: Options{Format: "gif"}, wantErr: ErrFormat},
		{name: "jpeg default quality", src: solid{8, 8}, opts: Options{Format: FormatJPEG}, want: `^data:image/jpeg;base64,`},
		{name: "jpeg bounds", src: solid{8, 8}, opts: Options{Format: FormatJPEG, Quality: Quality(0)}, want: `^data:image/jpeg;base64,`},
		{name: "png", src: solid{8, 8}, opts: Options{Format: FormatPNG, Quality: Quality(1)}, want: `^data:image/png;base64,`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExportImage(tt.src, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !regexp.MustCompile(tt.want).MatchString(got) {
				t.Errorf("url %.40q does not match %s", got, tt.want)
			}
		})
	}
}

func TestExportIsOneToOne(t *testing.T) {
	url, err := ExportImage(solid{33, 21}, Options{Format: FormatPNG})
	if err != nil {
		t.Fatal(err)
	}
	data, mime, err := DecodeDataURL(url)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q", mime)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 33 || b.Dy() != 21 {
		t.Errorf("bounds = %v", b)
	}
}

func TestEncodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, solid{16, 16}.Snapshot(), Options{Format: "jpg"}); err != nil {
		t.Fatal(err)
	}
	if _, err := jpeg.Decode(&buf); err != nil {
		t.Errorf("output is not a jpeg: %v", err)
	}
	if err := Encode(&buf, nil, Options{}); !errors.Is(err, ErrNoSurface) {
		t.Errorf("nil image: %v", err)
	}
}

func TestJPEGQuality(t *testing.T) {
	for q, want := range map[float64]int{0: 1, 0.9: 90, 1: 100, 0.25: 25} {
		if got := jpegQuality(q); got != want {
			t.Errorf("jpegQuality(%v) = %d, want %d", q, got, want)
		}
	}
}

func TestDecodeDataURL(t *testing.T) {
	for _, s := range []string{"", "image/png;base64,AA==", "data:image/png;base64", "data:image/png,AA==", "data:image/png;base64,!!"} {
		if _, _, err := DecodeDataURL(s); err == nil {
			t.Errorf("DecodeDataURL(%q) succeeded", s)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ext  string
	}{
		{"out.png", FormatPNG, "png"},
		{"out.JPG", FormatJPEG, "jpg"},
		{"out.jpeg", FormatJPEG, "jpg"},
		{"out", FormatPNG, "png"},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if err != nil || got != tt.want || got.Ext() != tt.ext {
			t.Errorf("FormatFromPath(%q) = %q, %v", tt.path, got, err)
		}
	}
	if _, err := FormatFromPath("out.gif"); !errors.Is(err, ErrFormat) {
		t.Errorf("gif: %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	img := solid{400, 300}.Snapshot()
	th := Thumbnail(img, 200)
	if b := th.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("bounds = %v", b)
	}
	small := solid{100, 50}.Snapshot()
	if Thumbnail(small, 200) != small {
		t.Error("small image was rescaled")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	st := shape.DefaultStyle()
	preview := shape.CreatePolyline([]shape.Point{shape.Pt(0, 0), shape.Pt(9, 9)}, st)
	preview.Flags().Ephemeral = true
	shapes := []shape.Shape{
		shape.NewImage(solid{4, 4}.Snapshot()),
		shape.CreateRectangle(shape.Pt(10, 10), shape.Pt(110, 80), st),
		preview,
		shape.CreateArrow(shape.Pt(0, 0), shape.Pt(50, 50), st),
		shape.CreateText(shape.Pt(5, 5), "label", st),
	}
	doc := ToDocument(shapes)
	if doc.Version != "1.0" || len(doc.Objects) != 3 {
		t.Fatalf("doc = %+v", doc)
	}
	wantKinds := []shape.Kind{shape.KindRectangle, shape.KindArrow, shape.KindText}
	for i, o := range doc.Objects {
		if o.Kind() != wantKinds[i] {
			t.Errorf("objects[%d] kind = %q, want %q", i, o.Kind(), wantKinds[i])
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseDocument(data)
	if err != nil {
		t.Fatal(err)
	}
	got, errs := FromDocument(parsed, nil)
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if len(got) != 3 {
		t.Fatalf("got %d shapes", len(got))
	}
	for i, s := range got {
		if s.ID() != doc.Objects[i]["id"] {
			t.Errorf("shape %d id = %q", i, s.ID())
		}
	}
}

func TestFromDocumentSkipsMalformed(t *testing.T) {
	data := []byte(`{"version":"1.0","objects":[
		null,
		42,
		"rect",
		{"left":1},
		{"kind":"hexagon"},
		{"kind":"rectangleShape","left":0,"top":0,"width":10,"height":10},
		{"kind":"rectangleShape","left":0},
		{"kind":"circle","cx":5,"cy":5,"rx":3,"ry":3}
	]}`)
	doc, err := ParseDocument(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Objects) != 8 {
		t.Fatalf("objects = %d", len(doc.Objects))
	}
	shapes, errs := FromDocument(doc, shape.Default())
	if len(shapes) != 2 || len(errs) != 6 {
		t.Fatalf("shapes=%d errs=%d (%v)", len(shapes), len(errs), errs)
	}
	if shapes[1].Kind() != shape.KindCircle {
		t.Errorf("legacy kind decoded as %q", shapes[1].Kind())
	}
	for _, err := range errs[:4] {
		if !errors.Is(err, shape.ErrMalformed) {
			t.Errorf("err %v does not wrap ErrMalformed", err)
		}
	}
	if !errors.Is(errs[4], shape.ErrUnknownKind) {
		t.Errorf("err %v does not wrap ErrUnknownKind", errs[4])
	}
}

func TestEmptyDocumentMarshalsArray(t *testing.T) {
	data, err := json.Marshal(ToDocument(nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"version":"1.0","objects":[]}` {
		t.Errorf("json = %s", data)
	}
	if _, err := ParseDocument([]byte("[")); err == nil {
		t.Error("ParseDocument accepted broken json")
	}
}

func TestSnapshotFunc(t *testing.T) {
	var none SnapshotFunc
	if _, err := ExportImage(none, Options{}); !errors.Is(err, ErrNoSurface) {
		t.Errorf("nil func: %v", err)
	}
	f := SnapshotFunc(solid{4, 4}.Snapshot)
	if _, err := ExportImage(f, Options{}); err != nil {
		t.Error(err)
	}
}
