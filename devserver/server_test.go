package devserver

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"moria.us/lettertab/midi"
	"moria.us/lettertab/tab"
	"moria.us/lettertab/watcher"
	"moria.us/lettertab/wire"
)

func convertState(t *testing.T, text string) *watcher.State {
	t.Helper()
	notes, err := tab.ConvertNotes(strings.NewReader(text), tab.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return &watcher.State{Notes: notes, Output: tab.Render(notes)}
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, body
}

func TestServe(t *testing.T) {
	s := New(midi.Options{})
	s.Update(convertState(t, "5|--d--|\n4|dd-a-|\n"))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	status, body := get(t, ts.URL+"/")
	if status != http.StatusOK {
		t.Fatalf("GET /: status %d", status)
	}
	if expect := "Q__NOTE(NOTE_D4),Q__NOTE(NOTE_D4),Q__NOTE(NOTE_D5),H__NOTE(NOTE_A4)\n"; string(body) != expect {
		t.Errorf("GET /: %q, expect %q", body, expect)
	}

	status, body = get(t, ts.URL+"/song.mid")
	if status != http.StatusOK {
		t.Fatalf("GET /song.mid: status %d", status)
	}
	f, err := midi.Parse(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Tracks) != 1 || len(f.Tracks[0]) != 4 {
		t.Errorf("GET /song.mid: unexpected notes: %+v", f.Tracks)
	}

	status, body = get(t, ts.URL+"/notes.bin")
	if status != http.StatusOK {
		t.Fatalf("GET /notes.bin: status %d", status)
	}
	notes, err := wire.Unmarshal(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 4 {
		t.Errorf("GET /notes.bin: got %d notes", len(notes))
	}

	if status, _ := get(t, ts.URL+"/missing"); status != http.StatusNotFound {
		t.Errorf("GET /missing: status %d", status)
	}
}

func TestServeError(t *testing.T) {
	s := New(midi.Options{})
	s.Update(&watcher.State{Err: tab.ErrEmptyInput})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	for _, path := range []string{"/", "/song.mid", "/notes.bin"} {
		status, body := get(t, ts.URL+path)
		if status != http.StatusInternalServerError {
			t.Errorf("GET %s: status %d", path, status)
		}
		if !strings.Contains(string(body), tab.ErrEmptyInput.Error()) {
			t.Errorf("GET %s: body %q does not contain error", path, body)
		}
	}
}

func TestSocket(t *testing.T) {
	s := New(midi.Options{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/socket", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.SetReadDeadline(time.Now().Add(10 * time.Second))

	read := func() stateMessage {
		_, data, err := c.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		var m stateMessage
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatal(err)
		}
		return m
	}

	if m := read(); m.State != "building" {
		t.Errorf("initial state = %q, expect building", m.State)
	}
	s.Update(convertState(t, "4|c---|\n"))
	if m := read(); m.State != "ok" || m.Output != "W__NOTE(NOTE_C4)" || m.Notes != 1 {
		t.Errorf("state = %+v", m)
	}
	s.Update(&watcher.State{Err: tab.ErrEmptyInput})
	if m := read(); m.State != "fail" || m.Error != tab.ErrEmptyInput.Error() {
		t.Errorf("state = %+v", m)
	}
}
