// Package message handles direct operator-to-operator messages. Bodies
// are ciphered at rest; listings only ever show an encrypted preview.
package message

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/stlalpha/warroom/internal/cipher"
	"github.com/stlalpha/warroom/internal/identity"
	"github.com/stlalpha/warroom/internal/store"
)

// MaxBody is the body field capacity, terminator included.
const MaxBody = 1000

// FileName is the message store file within the data directory.
const FileName = "messages.dat"

// previewLen bounds the ciphertext excerpt shown in listings.
const previewLen = 20

var (
	ErrReceiverNotFound = errors.New("message: recipient not found")
	ErrMessageNotFound  = errors.New("message: message not found")
	ErrBodyTooLong      = errors.New("message: message too long")

	// ErrBadKey means the message exists but the supplied key is wrong.
	// Callers must keep this distinct from ErrMessageNotFound.
	ErrBadKey = errors.New("message: incorrect key")
)

// record is the fixed on-disk layout of one direct message. Messages are
// addressed, not keyed: the same (sender, receiver) pair may appear any
// number of times.
type record struct {
	Sender   [identity.MaxUsername]byte
	Receiver [identity.MaxUsername]byte
	Body     [MaxBody]byte
	Key      int32
}

// Message is the decrypted form returned by Read.
type Message struct {
	Sender   string
	Receiver string
	Body     string
}

// Preview is one listing entry: the sender plus an excerpt of the
// ciphertext. The body is never decrypted for a listing.
type Preview struct {
	Sender  string
	Excerpt string
}

// Directory is the slice of the operator directory the message service
// needs: recipients must be registered operators.
type Directory interface {
	Exists(username string) (bool, error)
}

// Service provides direct message operations over the flat store.
type Service struct {
	store *store.Store[record]
	dir   Directory
}

// NewService creates a message service rooted at dataPath.
func NewService(dataPath string, dir Directory) (*Service, error) {
	st, err := store.New[record](filepath.Join(dataPath, FileName))
	if err != nil {
		return nil, err
	}
	return &Service{store: st, dir: dir}, nil
}

// Send ciphers the body with the supplied key and appends the message.
// The receiver must be a registered operator.
func (s *Service) Send(sender, receiver, body string, key int) error {
	if !store.Fits(body, MaxBody) {
		return fmt.Errorf("%w: max %d characters", ErrBodyTooLong, MaxBody-1)
	}
	exists, err := s.dir.Exists(receiver)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrReceiverNotFound, receiver)
	}

	rec := &record{Key: int32(key)}
	store.SetField(rec.Sender[:], sender)
	store.SetField(rec.Receiver[:], receiver)
	store.SetField(rec.Body[:], cipher.Encode(body, key))
	if err := s.store.Append(rec); err != nil {
		return err
	}
	log.Printf("INFO: message: %q -> %q", sender, receiver)
	return nil
}

// ListFor returns a preview of every message addressed to receiver, in
// file order.
func (s *Service) ListFor(receiver string) ([]Preview, error) {
	var previews []Preview
	err := s.store.ScanAll(func(r *record, _ int64) bool {
		if store.FieldString(r.Receiver[:]) != receiver {
			return true
		}
		body := store.FieldString(r.Body[:])
		if len(body) > previewLen {
			body = body[:previewLen]
		}
		previews = append(previews, Preview{
			Sender:  store.FieldString(r.Sender[:]),
			Excerpt: body,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return previews, nil
}

// Read decrypts the first message in file order from sender to receiver,
// provided the supplied key matches. When several messages exist from the
// same sender only the first is ever considered; the key is the only
// disambiguator the format offers, and it is not one. Long-standing
// behavior, kept as is.
func (s *Service) Read(receiver, sender string, key int) (*Message, error) {
	rec, _, err := s.store.FindFirst(func(r *record) bool {
		return store.FieldString(r.Receiver[:]) == receiver &&
			store.FieldString(r.Sender[:]) == sender
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	if int(rec.Key) != key {
		return nil, ErrBadKey
	}
	return &Message{
		Sender:   sender,
		Receiver: receiver,
		Body:     cipher.Decode(store.FieldString(rec.Body[:]), key),
	}, nil
}
