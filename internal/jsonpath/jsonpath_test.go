package jsonpath

import "testing"

func TestExtractByPath(t *testing.T) {
	root := map[string]interface{}{
		"text": "hello",
		"data": map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"value": "a"},
				map[string]interface{}{"value": "b"},
			},
		},
		"results": []interface{}{
			map[string]interface{}{
				"alternatives": []interface{}{
					map[string]interface{}{"transcript": "ok"},
				},
			},
		},
	}

	if v, ok := ExtractByPath(root, "data.items[1].value"); !ok || v != "b" {
		t.Fatalf("expected b, got %v (ok=%v)", v, ok)
	}
	if v, ok := ExtractByPath(root, "results[0].alternatives[0].transcript"); !ok || v != "ok" {
		t.Fatalf("expected ok, got %v (ok=%v)", v, ok)
	}
	if _, ok := ExtractByPath(root, "data.items[99].value"); ok {
		t.Fatalf("expected not found")
	}
}

func TestParseKeyAndIndexes(t *testing.T) {
	key, idxs, err := ParseKeyAndIndexes("foo[0][1]")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if key != "foo" || len(idxs) != 2 || idxs[0] != 0 || idxs[1] != 1 {
		t.Fatalf("unexpected parse result: key=%s idxs=%v", key, idxs)
	}
}

func TestParseKeyAndIndexesWildcard(t *testing.T) {
	key, idxs, err := ParseKeyAndIndexes("segments[*]")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if key != "segments" || len(idxs) != 1 || idxs[0] != Wildcard {
		t.Fatalf("unexpected parse result: key=%s idxs=%v", key, idxs)
	}
	if _, _, err := ParseKeyAndIndexes("a[-1]"); err == nil {
		t.Fatalf("expected negative index to be rejected")
	}
}

func TestExtractTexts(t *testing.T) {
	body := []byte(`{"text":"Hello world","segments":[{"text":"Hello"},{"text":"world"},{"id":3}]}`)
	got, err := ExtractTexts(body, "segments[*].text")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || got[0] != "Hello" || got[1] != "world" {
		t.Fatalf("unexpected texts: %v", got)
	}

	nested := []byte(`{"results":[{"alternatives":[{"transcript":"a"}]},{"alternatives":[{"transcript":"b"}]}]}`)
	got, err = ExtractTexts(nested, "results[*].alternatives[0].transcript")
	if err != nil || len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected nested texts: %v (err=%v)", got, err)
	}

	got, err = ExtractTexts(body, "missing[*].text")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no texts, got %v (err=%v)", got, err)
	}
	if _, err := ExtractTexts([]byte("not json"), "text"); err == nil {
		t.Fatalf("expected JSON error")
	}
}

func TestExtractTextFromResponse(t *testing.T) {
	if v := ExtractTextFromResponse([]byte(`{"result":{"text":"hi"}}`), "result.text"); v != "hi" {
		t.Fatalf("expected hi, got %q", v)
	}
	if v := ExtractTextFromResponse([]byte(`{"text":"fallback"}`), "nope"); v != "fallback" {
		t.Fatalf("expected fallback, got %q", v)
	}
}
