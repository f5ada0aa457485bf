package client

import (
	"maps"
	"slices"
	"sync"

	"github.com/sakif/pinboard/internal/model"
)

type EventKind int

const (
	// StreamsChanged: a stream was created, renamed or deleted, or the list
	// was reloaded.
	StreamsChanged EventKind = iota + 1
	BoardAdded
	BoardRemoved
	// BoardUnfollowed: the board left every stream of the caller.
	BoardUnfollowed
	StatusLoaded
)

func (k EventKind) String() string {
	switch k {
	case StreamsChanged:
		return "streams_changed"
	case BoardAdded:
		return "board_added"
	case BoardRemoved:
		return "board_removed"
	case BoardUnfollowed:
		return "board_unfollowed"
	case StatusLoaded:
		return "status_loaded"
	default:
		return "unknown"
	}
}

// Event describes one confirmed change. StreamID and BoardID are set when
// the change concerns them. Status carries the server's follow status for
// BoardUnfollowed and StatusLoaded.
type Event struct {
	Kind     EventKind
	StreamID string
	BoardID  string
	Status   *model.FollowStatus
}

// Store caches what the server has confirmed about the caller's streams so
// that several views of the same data stay consistent. It never fetches on
// its own; Streams and FollowFlow write to it after each successful call.
type Store struct {
	mu      sync.Mutex
	streams []model.FollowStream
	loaded  bool
	boards  map[string][]model.Board      // stream id -> member boards
	status  map[string]model.FollowStatus // board id -> follow status
	// board id -> streams known to contain it; may be incomplete
	memberOf map[string]map[string]bool
	subs    map[int]func(Event)
	nextSub int
}

func NewStore() *Store {
	return &Store{
		boards: make(map[string][]model.Board),
		status:   make(map[string]model.FollowStatus),
		memberOf: make(map[string]map[string]bool),
		subs:     make(map[int]func(Event)),
	}
}

// Subscribe registers fn for every later event. fn runs on the goroutine
// that made the change, after the store lock is released, so it may read
// the store. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Streams returns the cached stream list and whether it has been loaded.
func (s *Store) Streams() ([]model.FollowStream, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.streams), s.loaded
}

// StreamBoards returns the cached boards of a stream, if known.
func (s *Store) StreamBoards(streamID string) ([]model.Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	boards, ok := s.boards[streamID]
	return slices.Clone(boards), ok
}

func (s *Store) FollowStatus(boardID string) (model.FollowStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.status[boardID]
	return st, ok
}

func (s *Store) setStreams(streams []model.FollowStream) {
	s.update(Event{Kind: StreamsChanged}, func() {
		s.streams = slices.Clone(streams)
		s.loaded = true
		known := make(map[string]bool, len(streams))
		for _, st := range streams {
			known[st.ID] = true
		}
		for id := range s.boards {
			if !known[id] {
				delete(s.boards, id)
			}
		}
		for boardID, streams := range s.memberOf {
			maps.DeleteFunc(streams, func(id string, _ bool) bool { return !known[id] })
			if len(streams) == 0 {
				delete(s.memberOf, boardID)
			}
		}
	})
}

func (s *Store) putStream(stream model.FollowStream) {
	s.update(Event{Kind: StreamsChanged, StreamID: stream.ID}, func() {
		stream.Boards = nil
		i := slices.IndexFunc(s.streams, func(st model.FollowStream) bool { return st.ID == stream.ID })
		if i >= 0 {
			s.streams[i] = stream
		} else {
			s.streams = append(s.streams, stream)
		}
	})
}

// deleteStream forgets the stream and returns the boards that may have lost
// their last stream with it. When the stream's board list is cached those
// are its members; otherwise every board known to be followed is a
// candidate. Boards known to be in another stream are left out. Cached
// status of the candidates is dropped.
func (s *Store) deleteStream(streamID string) []string {
	var lost []string
	s.update(Event{Kind: StreamsChanged, StreamID: streamID}, func() {
		candidates := make(map[string]bool)
		if boards, ok := s.boards[streamID]; ok {
			for _, b := range boards {
				candidates[b.ID] = true
			}
		} else {
			for boardID, streams := range s.memberOf {
				if streams[streamID] {
					candidates[boardID] = true
				}
			}
			for boardID, st := range s.status {
				if st.Following {
					candidates[boardID] = true
				}
			}
		}

		s.streams = slices.DeleteFunc(s.streams, func(st model.FollowStream) bool { return st.ID == streamID })
		delete(s.boards, streamID)
		for boardID := range s.memberOf {
			s.leave(streamID, boardID)
		}

		for boardID := range candidates {
			if len(s.memberOf[boardID]) > 0 {
				continue
			}
			delete(s.status, boardID)
			lost = append(lost, boardID)
		}
		slices.Sort(lost)
	})
	return lost
}

func (s *Store) setStreamBoards(streamID string, boards []model.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[streamID] = slices.Clone(boards)
	for boardID := range s.memberOf {
		s.leave(streamID, boardID)
	}
	for _, b := range boards {
		s.join(streamID, b.ID)
	}
}

// addBoard records a confirmed membership. The API answers with ids only,
// so a cached board list for the stream is dropped and refetched on the
// next read.
func (s *Store) addBoard(streamID, boardID string) {
	s.update(Event{Kind: BoardAdded, StreamID: streamID, BoardID: boardID}, func() {
		if boards, ok := s.boards[streamID]; ok && !containsBoard(boards, boardID) {
			delete(s.boards, streamID)
		}
		s.join(streamID, boardID)
		if st, ok := s.status[boardID]; ok && !st.Following {
			st.Following = true
			st.FollowerCount++
			s.status[boardID] = st
		}
	})
}

// removeBoard drops one membership and reports whether the board may have
// lost its last stream, which is the case unless another membership is
// known.
func (s *Store) removeBoard(streamID, boardID string) bool {
	var lost bool
	s.update(Event{Kind: BoardRemoved, StreamID: streamID, BoardID: boardID}, func() {
		if boards, ok := s.boards[streamID]; ok {
			s.boards[streamID] = removeBoardID(boards, boardID)
		}
		s.leave(streamID, boardID)
		lost = len(s.memberOf[boardID]) == 0
	})
	return lost
}

// unfollow drops the board from every cached stream and stores the
// server's view of its status.
func (s *Store) unfollow(status model.FollowStatus) {
	s.update(Event{Kind: BoardUnfollowed, BoardID: status.BoardID, Status: &status}, func() {
		for id, boards := range s.boards {
			s.boards[id] = removeBoardID(boards, status.BoardID)
		}
		delete(s.memberOf, status.BoardID)
		s.status[status.BoardID] = status
	})
}

func (s *Store) setStatus(status model.FollowStatus) {
	s.update(Event{Kind: StatusLoaded, BoardID: status.BoardID, Status: &status}, func() {
		s.status[status.BoardID] = status
	})
}

// update applies fn under the lock, then notifies subscribers outside it.
func (s *Store) update(ev Event, fn func()) {
	s.mu.Lock()
	fn()
	subs := make([]func(Event), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(ev)
	}
}

// Callers hold s.mu.
func (s *Store) join(streamID, boardID string) {
	streams, ok := s.memberOf[boardID]
	if !ok {
		streams = make(map[string]bool)
		s.memberOf[boardID] = streams
	}
	streams[streamID] = true
}

// Callers hold s.mu.
func (s *Store) leave(streamID, boardID string) {
	delete(s.memberOf[boardID], streamID)
	if len(s.memberOf[boardID]) == 0 {
		delete(s.memberOf, boardID)
	}
}

func containsBoard(boards []model.Board, boardID string) bool {
	return slices.ContainsFunc(boards, func(b model.Board) bool { return b.ID == boardID })
}

func removeBoardID(boards []model.Board, boardID string) []model.Board {
	return slices.DeleteFunc(boards, func(b model.Board) bool { return b.ID == boardID })
}
