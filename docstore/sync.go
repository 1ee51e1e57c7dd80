package docstore

import (
	"fmt"

	"github.com/automerge/automerge-go"
)

// Peer runs the document sync protocol against one remote counterpart.
// Messages are opaque byte strings; carrying them to the other side is the
// caller's job, the store itself has no transport.
type Peer struct {
	store *Store
	state *automerge.SyncState
}

// NewPeer starts a sync conversation. Each remote counterpart needs its own
// peer, since the state tracks what that remote is known to have.
func (s *Store) NewPeer() (*Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, errClosed
	}
	return &Peer{store: s, state: automerge.NewSyncState(s.doc)}, nil
}

// GenerateMessage produces the next protocol message for the remote, or
// false when the remote is believed up to date. Call it again after every
// ReceiveMessage; a conversation is quiet once both sides report false.
func (p *Peer) GenerateMessage() ([]byte, bool) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	if p.store.doc == nil {
		return nil, false
	}

	msg, valid := p.state.GenerateMessage()
	if !valid {
		return nil, false
	}
	return msg.Bytes(), true
}

// ReceiveMessage consumes one message from the remote, applying any changes
// it carries. Applied changes are snapshotted like local writes. A message
// showing that every remote head is already known locally completes pending
// subscriptions; a message that fails to apply moves them to the error
// state.
func (p *Peer) ReceiveMessage(raw []byte) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	if p.store.doc == nil {
		return errClosed
	}

	before := p.store.doc.Heads()
	msg, err := p.state.ReceiveMessage(raw)
	if err != nil {
		err = fmt.Errorf("failed to apply sync message: %w", err)
		p.store.subs.fail(err)
		return err
	}

	if !sameHeads(before, p.store.doc.Heads()) {
		if err := p.store.snapshotLocked(); err != nil {
			return err
		}
	}

	if msg != nil && p.store.knowsHeadsLocked(msg.Heads()) {
		p.store.subs.complete()
	}
	return nil
}

func sameHeads(a, b []automerge.ChangeHash) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].String() != b[i].String() {
			return false
		}
	}
	return true
}

// knowsHeadsLocked reports whether every given head names a change the local
// document already has. Callers hold mu.
func (s *Store) knowsHeadsLocked(heads []automerge.ChangeHash) bool {
	changes, err := s.doc.Changes()
	if err != nil {
		return false
	}
	known := make(map[string]bool, len(changes))
	for _, c := range changes {
		known[c.Hash().String()] = true
	}
	for _, h := range heads {
		if !known[h.String()] {
			return false
		}
	}
	return true
}
