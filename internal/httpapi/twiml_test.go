package httpapi

import (
	"encoding/xml"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondTwiMLWellFormed(t *testing.T) {
	rec := httptest.NewRecorder()
	respondTwiML(rec,
		twimlSay{Text: "Hello"},
		twimlRecord{Action: "/process_recording", Method: "POST", MaxLength: 15, PlayBeep: true, Trim: "trim-silence"},
		twimlSay{Text: "Goodbye"},
	)

	body := rec.Body.String()
	if !strings.HasPrefix(body, xml.Header) {
		t.Fatalf("missing XML header:\n%s", body)
	}

	var parsed struct {
		XMLName xml.Name `xml:"Response"`
		Inner   string   `xml:",innerxml"`
	}
	if err := xml.Unmarshal([]byte(body), &parsed); err != nil {
		t.Fatalf("TwiML not well-formed: %v\n%s", err, body)
	}

	sayIdx := strings.Index(body, "<Say>Hello</Say>")
	recordIdx := strings.Index(body, "<Record ")
	byeIdx := strings.Index(body, "<Say>Goodbye</Say>")
	if sayIdx < 0 || recordIdx < 0 || byeIdx < 0 {
		t.Fatalf("missing verbs:\n%s", body)
	}
	if !(sayIdx < recordIdx && recordIdx < byeIdx) {
		t.Fatalf("verb order not preserved:\n%s", body)
	}
}

func TestRespondTwiMLPlayURL(t *testing.T) {
	rec := httptest.NewRecorder()
	respondTwiML(rec, twimlPlay{URL: "https://example.com/tts_response/abc"})

	if !strings.Contains(rec.Body.String(), "<Play>https://example.com/tts_response/abc</Play>") {
		t.Fatalf("Play verb missing URL:\n%s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Fatalf("content type = %q, want text/xml", ct)
	}
}
