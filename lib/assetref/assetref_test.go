// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package assetref

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/bureau-foundation/lottiepack/lib/dedup"
	"github.com/bureau-foundation/lottiepack/lib/lottie"
	"github.com/bureau-foundation/lottiepack/lib/testutil"
)

func fixture(t *testing.T) []byte {
	t.Helper()
	return testutil.Animation(t, "fixture",
		testutil.Embedded{ID: "img_0", MediaType: "image/png", Data: testutil.SolidPNG(t, testutil.DistinctColor(0))},
		testutil.Embedded{ID: "img_1", MediaType: "image/png", Data: testutil.SolidPNG(t, testutil.DistinctColor(1))},
		testutil.Embedded{ID: "img_2", MediaType: "image/png", Data: testutil.SolidPNG(t, testutil.DistinctColor(0))},
		testutil.Embedded{ID: "snd_0", MediaType: "audio/mpeg", Data: testutil.MP3(0)},
		testutil.Embedded{ID: "Roboto", MediaType: "font/ttf", Data: testutil.TTF(0)},
	)
}

func TestExternalize(t *testing.T) {
	document := fixture(t)
	original := bytes.Clone(document)

	stripped, assets, err := Externalize(document, dedup.NewEngine(dedup.Options{}), "hero")
	if err != nil {
		t.Fatalf("Externalize: %v", err)
	}
	if !bytes.Equal(document, original) {
		t.Fatal("Externalize modified its input")
	}

	var paths []string
	for _, asset := range assets {
		paths = append(paths, asset.Path())
		if got := asset.ParentAnimations(); !reflect.DeepEqual(got, []string{"hero"}) {
			t.Errorf("%s parents = %v", asset.Path(), got)
		}
	}
	want := []string{"images/image_0.png", "images/image_1.png", "audio/audio_0.mp3", "fonts/font_0.ttf"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("assets = %v, want %v", paths, want)
	}

	// img_2 duplicates img_0, so both point at image_0.
	for index, file := range map[string]string{"1": "image_0.png", "2": "image_1.png", "3": "image_0.png"} {
		entry := gjson.GetBytes(stripped, "assets."+index)
		if entry.Get("u").String() != "/images/" || entry.Get("p").String() != file || entry.Get("e").Int() != 0 {
			t.Errorf("assets.%s = %s", index, entry.Raw)
		}
	}
	if got := gjson.GetBytes(stripped, "assets.4.u").String(); got != "/audio/" {
		t.Errorf("audio directory = %q", got)
	}
	if got := gjson.GetBytes(stripped, "fonts.list.0.fPath").String(); got != "/fonts/font_0.ttf" {
		t.Errorf("font path = %q", got)
	}
	if strings.Contains(string(stripped), "base64") {
		t.Error("stripped document still embeds a payload")
	}
	if got := References(stripped); !reflect.DeepEqual(got, want) {
		t.Errorf("References() = %v, want %v", got, want)
	}
}

func TestInlineInvertsExternalize(t *testing.T) {
	document := fixture(t)
	stripped, assets, err := Externalize(document, dedup.NewEngine(dedup.Options{}), "hero")
	if err != nil {
		t.Fatal(err)
	}
	inlined, err := Inline(stripped, ResolverFromAssets(assets))
	if err != nil {
		t.Fatalf("Inline: %v", err)
	}
	if !bytes.Equal(inlined, document) {
		t.Errorf("inline(externalize(doc)) != doc\n got: %s\nwant: %s", inlined, document)
	}
}

func TestExternalizeWithoutAssets(t *testing.T) {
	document := []byte(`{"v":"5.7.4", "layers": [ {"ty": 4} ],
  "assets": [{"id":"comp_0","layers":[]}]}`)
	stripped, assets, err := Externalize(document, dedup.NewEngine(dedup.Options{}), "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 0 || !bytes.Equal(stripped, document) {
		t.Errorf("document without payloads changed: %s (%d assets)", stripped, len(assets))
	}
	if &stripped[0] == &document[0] {
		t.Error("Externalize returned the input slice")
	}
}

func TestExternalizeLeavesUnknownShapes(t *testing.T) {
	document := []byte(`{"assets":[
  {"id":"remote","u":"https://cdn.example.com/","p":"a.png","e":0},
  {"id":"video","u":"","p":"data:video/mp4;base64,AAAA","e":1},
  {"id":"number","p":7}
]}`)
	stripped, assets, err := Externalize(document, dedup.NewEngine(dedup.Options{}), "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 0 || !bytes.Equal(stripped, document) {
		t.Errorf("unknown shapes were rewritten: %s", stripped)
	}
	inlined, err := Inline(document, func(string) ([]byte, error) {
		t.Fatal("resolver called for an unknown shape")
		return nil, nil
	})
	if err != nil || !bytes.Equal(inlined, document) {
		t.Errorf("Inline changed unknown shapes: %s, %v", inlined, err)
	}
}

func TestExternalizeRepeatedCallsDoNotAlias(t *testing.T) {
	document := fixture(t)
	first, _, err := Externalize(document, dedup.NewEngine(dedup.Options{}), "a")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := Externalize(document, dedup.NewEngine(dedup.Options{}), "a")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("repeated Externalize produced different output")
	}
	first[0] = ' '
	if second[0] == ' ' {
		t.Error("results share memory")
	}
}

func TestExternalizeInvalidPayload(t *testing.T) {
	document := []byte(`{"assets":[{"id":"a","u":"","p":"data:image/png;base64,!!!!","e":1}]}`)
	if _, _, err := Externalize(document, dedup.NewEngine(dedup.Options{}), "a"); !errors.Is(err, lottie.ErrInvalidAssetData) {
		t.Errorf("bad base64 = %v, want ErrInvalidAssetData", err)
	}

	corrupt := testutil.SolidPNG(t, testutil.DistinctColor(0))[:30]
	document = testutil.Animation(t, "x", testutil.Embedded{ID: "a", MediaType: "image/png", Data: corrupt})
	if _, _, err := Externalize(document, dedup.NewEngine(dedup.Options{}), "a"); !errors.Is(err, lottie.ErrInvalidAssetData) {
		t.Errorf("corrupt png = %v, want ErrInvalidAssetData", err)
	}

	if _, _, err := Externalize([]byte(`{"assets":[`), dedup.NewEngine(dedup.Options{}), "a"); !errors.Is(err, lottie.ErrInvalidAssetData) {
		t.Errorf("truncated JSON = %v, want ErrInvalidAssetData", err)
	}
}

func TestInlineMissingAsset(t *testing.T) {
	document := []byte(`{"assets":[{"id":"a","u":"/images/","p":"image_7.png","e":0}]}`)
	_, err := Inline(document, ResolverFromAssets(nil))
	if !errors.Is(err, lottie.ErrAssetNotFound) {
		t.Fatalf("Inline = %v, want ErrAssetNotFound", err)
	}
	if !strings.Contains(err.Error(), "images/image_7.png") {
		t.Errorf("error %q does not name the path", err)
	}

	_, err = Inline(document, func(string) ([]byte, error) { return nil, errors.New("disk on fire") })
	if !errors.Is(err, lottie.ErrAssetNotFound) {
		t.Errorf("resolver failure = %v, want ErrAssetNotFound", err)
	}
}

func TestReferencePath(t *testing.T) {
	tests := []struct {
		directory, file string
		want            string
		ok              bool
	}{
		{"/images/", "image_0.png", "images/image_0.png", true},
		{"images/", "image_0.png", "images/image_0.png", true},
		{"", "/fonts/font_0.ttf", "fonts/font_0.ttf", true},
		{"", "images/image_0.png", "images/image_0.png", true},
		{"/audio/", "audio_0.mp3", "audio/audio_0.mp3", true},
		{"", "data:image/png;base64,AAAA", "", false},
		{"https://cdn.example.com/images/", "a.png", "", false},
		{"/other/", "a.png", "", false},
		{"/images/", "", "", false},
		{"/images/nested/", "a.png", "", false},
	}
	for _, test := range tests {
		got, ok := ReferencePath(test.directory, test.file)
		if got != test.want || ok != test.ok {
			t.Errorf("ReferencePath(%q, %q) = %q, %v; want %q, %v", test.directory, test.file, got, ok, test.want, test.ok)
		}
	}
}

type failingRegistry struct{}

func (failingRegistry) Admit(lottie.AssetKind, []byte, string) (*lottie.Asset, error) {
	return nil, lottie.ErrInvalidAssetData
}

func TestExternalizeRegistryError(t *testing.T) {
	if _, _, err := Externalize(fixture(t), failingRegistry{}, "a"); !errors.Is(err, lottie.ErrInvalidAssetData) {
		t.Errorf("Externalize = %v, want the registry error", err)
	}
}

func imageTheme(t *testing.T) *lottie.Theme {
	t.Helper()
	payload := testutil.DataURL("image/png", testutil.SolidPNG(t, testutil.DistinctColor(5)))
	value := func(url string) json.RawMessage {
		return json.RawMessage(`{"id":"logo","width":16,"height":16,"url":"` + url + `"}`)
	}
	theme, err := lottie.NewTheme("brand", []lottie.Rule{
		{ID: "bg", Type: lottie.TypeColor, Value: json.RawMessage(`[0,0,0,1]`)},
		{ID: "logo", Type: lottie.TypeImage, Value: value(payload)},
		{ID: "logo_anim", Type: lottie.TypeImage, Keyframes: []lottie.Keyframe{
			{Frame: 0, Value: value(payload)},
			{Frame: 30, Value: value("https://cdn.example.com/logo.png")},
		}},
		{ID: "scoped", Type: lottie.TypeImage, Value: value(payload), Animations: []string{"intro"}},
	})
	if err != nil {
		t.Fatalf("NewTheme: %v", err)
	}
	return theme
}

func TestExternalizeTheme(t *testing.T) {
	theme := imageTheme(t)
	before := theme.Rules()

	stripped, assets, err := ExternalizeTheme(theme, dedup.NewEngine(dedup.Options{}), []string{"hero", "outro"})
	if err != nil {
		t.Fatalf("ExternalizeTheme: %v", err)
	}
	if !reflect.DeepEqual(theme.Rules(), before) {
		t.Fatal("ExternalizeTheme modified its input")
	}
	if len(assets) != 1 || assets[0].Path() != "images/image_0.png" {
		t.Fatalf("assets = %v", assets)
	}
	if got := assets[0].ParentAnimations(); !reflect.DeepEqual(got, []string{"hero", "outro", "intro"}) {
		t.Errorf("parents = %v", got)
	}

	rules := stripped.Rules()
	if got := gjson.GetBytes(rules[1].Value, "url").String(); got != "images/image_0.png" {
		t.Errorf("static value url = %q", got)
	}
	// Keyframe values follow the same grammar as static values.
	if got := gjson.GetBytes(rules[2].Keyframes[0].Value, "url").String(); got != "images/image_0.png" {
		t.Errorf("keyframe value url = %q", got)
	}
	if got := gjson.GetBytes(rules[2].Keyframes[1].Value, "url").String(); got != "https://cdn.example.com/logo.png" {
		t.Errorf("remote keyframe url rewritten to %q", got)
	}
	if !bytes.Equal(rules[0].Value, before[0].Value) {
		t.Errorf("colour rule changed: %s", rules[0].Value)
	}
	if got := ThemeReferences(stripped); !reflect.DeepEqual(got, []string{"images/image_0.png"}) {
		t.Errorf("ThemeReferences() = %v", got)
	}

	inlined, err := InlineTheme(stripped, ResolverFromAssets(assets))
	if err != nil {
		t.Fatalf("InlineTheme: %v", err)
	}
	if !reflect.DeepEqual(inlined.Rules(), before) {
		t.Errorf("InlineTheme did not restore the rules:\n got %+v\nwant %+v", inlined.Rules(), before)
	}
}

func TestInlineThemeMissingAsset(t *testing.T) {
	theme, err := lottie.NewTheme("t", []lottie.Rule{
		{ID: "logo", Type: lottie.TypeImage, Value: json.RawMessage(`{"url":"images/gone.png"}`)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := InlineTheme(theme, ResolverFromAssets(nil)); !errors.Is(err, lottie.ErrAssetNotFound) {
		t.Errorf("InlineTheme = %v, want ErrAssetNotFound", err)
	}
}

func TestStylesheetThemePassesThrough(t *testing.T) {
	theme, err := lottie.NewStylesheetTheme("legacy", "FillShape { fill-color: red; }")
	if err != nil {
		t.Fatal(err)
	}
	stripped, assets, err := ExternalizeTheme(theme, dedup.NewEngine(dedup.Options{}), []string{"a"})
	if err != nil || len(assets) != 0 || stripped.Stylesheet() != theme.Stylesheet() {
		t.Errorf("ExternalizeTheme(stylesheet) = %v, %v, %v", stripped, assets, err)
	}
}
