// Package devserver serves a live preview of a tablature file while it is
// being edited.
package devserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"moria.us/lettertab/midi"
	"moria.us/lettertab/watcher"
	"moria.us/lettertab/wire"
)

const (
	textType  = "text/plain; charset=UTF-8"
	midiType  = "audio/midi"
	protoType = "application/x-protobuf"
)

// A Server serves the most recent conversion of a tablature file.
type Server struct {
	midiOpts midi.Options

	lock      sync.RWMutex
	state     *watcher.State
	listeners []chan<- *watcher.State
}

// New returns a server with no conversion result yet. Requests wait until the
// first call to Update.
func New(midiOpts midi.Options) *Server {
	return &Server{midiOpts: midiOpts}
}

// Watch updates the server with every state received from the channel, until
// the channel is closed.
func (s *Server) Watch(ch <-chan *watcher.State) {
	for st := range ch {
		s.Update(st)
	}
}

// Update replaces the current conversion result and notifies websocket
// clients.
func (s *Server) Update(st *watcher.State) {
	s.lock.Lock()
	s.state = st
	ls := s.listeners
	var pos int
	for _, l := range ls {
		select {
		case l <- st:
			ls[pos] = l
			pos++
		default:
			close(l)
		}
	}
	s.listeners = ls[:pos]
	for ; pos < len(ls); pos++ {
		ls[pos] = nil
	}
	s.lock.Unlock()
}

func (s *Server) addListener(ch chan<- *watcher.State) *watcher.State {
	if ch == nil {
		panic("nil channel")
	}
	s.lock.Lock()
	st := s.state
	s.listeners = append(s.listeners, ch)
	s.lock.Unlock()
	return st
}

func (s *Server) removeListener(ch chan<- *watcher.State) {
	s.lock.Lock()
	for i, l := range s.listeners {
		if l == ch {
			s.listeners[i] = s.listeners[len(s.listeners)-1]
			s.listeners[len(s.listeners)-1] = nil
			s.listeners = s.listeners[:len(s.listeners)-1]
			close(ch)
			break
		}
	}
	s.lock.Unlock()
}

// getState returns the current state, waiting for the first one if
// necessary. Returns nil if the context is done first.
func (s *Server) getState(ctx context.Context) *watcher.State {
	s.lock.RLock()
	st := s.state
	s.lock.RUnlock()
	if st != nil {
		return st
	}
	ch := make(chan *watcher.State, 1)
	if st = s.addListener(ch); st != nil {
		s.removeListener(ch)
		return st
	}
	defer s.removeListener(ch)
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				return nil
			}
			if st != nil {
				return st
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mx := chi.NewMux()
	mx.Get("/", s.serveText)
	mx.Get("/song.mid", s.serveMIDI)
	mx.Get("/notes.bin", s.serveWire)
	mx.Get("/socket", s.serveSocket)
	mx.NotFound(s.serveNotFound)
	return mx
}

func logResponse(r *http.Request, status int, msg string) {
	if status >= 400 {
		if msg == "" {
			msg = http.StatusText(status)
		}
		logrus.Errorln(status, r.URL, msg)
	} else if msg == "" {
		logrus.Infoln(status, r.URL)
	} else {
		logrus.Infoln(status, r.URL, msg)
	}
}

func serveData(w http.ResponseWriter, r *http.Request, status int, ctype string, data []byte) {
	hdr := w.Header()
	hdr.Set("Content-Type", ctype)
	hdr.Set("Content-Length", strconv.Itoa(len(data)))
	hdr.Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	w.Write(data)
}

func serveStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	logResponse(r, status, msg)
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d %s\n", status, http.StatusText(status))
	if msg != "" {
		fmt.Fprintf(&b, "%s\n", msg)
	}
	serveData(w, r, status, textType, b.Bytes())
}

func (s *Server) serveNotFound(w http.ResponseWriter, r *http.Request) {
	serveStatus(w, r, http.StatusNotFound, fmt.Sprintf("Page not found: %q", r.URL))
}

// currentState returns the state to serve, or writes an error response and
// returns nil.
func (s *Server) currentState(w http.ResponseWriter, r *http.Request) *watcher.State {
	st := s.getState(r.Context())
	if st == nil {
		// ctx canceled.
		return nil
	}
	if st.Err != nil {
		serveStatus(w, r, http.StatusInternalServerError, "Could not convert: "+st.Err.Error())
		return nil
	}
	return st
}

func (s *Server) serveText(w http.ResponseWriter, r *http.Request) {
	st := s.currentState(w, r)
	if st == nil {
		return
	}
	logResponse(r, http.StatusOK, "")
	serveData(w, r, http.StatusOK, textType, []byte(st.Output+"\n"))
}

func (s *Server) serveMIDI(w http.ResponseWriter, r *http.Request) {
	st := s.currentState(w, r)
	if st == nil {
		return
	}
	var b bytes.Buffer
	if err := midi.Encode(&b, st.Notes, s.midiOpts); err != nil {
		serveStatus(w, r, http.StatusInternalServerError, "Could not encode MIDI: "+err.Error())
		return
	}
	logResponse(r, http.StatusOK, "")
	serveData(w, r, http.StatusOK, midiType, b.Bytes())
}

func (s *Server) serveWire(w http.ResponseWriter, r *http.Request) {
	st := s.currentState(w, r)
	if st == nil {
		return
	}
	logResponse(r, http.StatusOK, "")
	serveData(w, r, http.StatusOK, protoType, wire.Marshal(st.Notes))
}

// ListenAndServe serves on every address the host resolves to, or on all
// local addresses if host is "*". It returns when the context is done or a
// listener fails.
func (s *Server) ListenAndServe(ctx context.Context, host string, port int) error {
	log := logrus.StandardLogger()
	var addrs []net.IPAddr
	if host == "*" {
		addrs = []net.IPAddr{{IP: net.IPv6zero}}
		host = "localhost"
	} else {
		var err error
		addrs, err = net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return fmt.Errorf("could not look up host: %v", err)
		}
		if host == "" {
			host = "localhost"
		}
	}
	hs := http.Server{
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	defer hs.Close()
	errch := make(chan error, len(addrs))
	var root *url.URL
	for _, addr := range addrs {
		ta := net.TCPAddr{
			IP:   addr.IP,
			Zone: addr.Zone,
			Port: port,
		}
		l, err := net.ListenTCP("tcp", &ta)
		if err != nil {
			return err
		}
		if root == nil {
			root = &url.URL{
				Scheme: "http",
				Host:   net.JoinHostPort(host, strconv.Itoa(port)),
				Path:   "/",
			}
			log.Infoln("Serving on:", root)
		}
		go func(l *net.TCPListener) {
			errch <- hs.Serve(l)
		}(l)
	}
	if root == nil {
		return errors.New("no address to serve on")
	}
	select {
	case err := <-errch:
		return fmt.Errorf("serve: %v", err)
	case <-ctx.Done():
		return ctx.Err()
	}
}
