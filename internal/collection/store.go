// Package collection owns the user's ownership records and their merge
// semantics. Every record is keyed by (card, parallel, condition) and that
// key is unique: add sums into an existing record, and an update that
// re-keys onto an occupied key merges the two quantities.
package collection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/formulacardz/cardz/pkg/client"
	"github.com/formulacardz/cardz/pkg/domain"
)

// Remote is the slice of the API the collection needs. Mutations are applied
// locally only after the corresponding remote call succeeds.
type Remote interface {
	Collection(ctx context.Context, userID string) ([]domain.OwnershipRecord, error)
	AddOwnership(ctx context.Context, req client.AddOwnershipRequest) error
	UpdateOwnership(ctx context.Context, req client.UpdateOwnershipRequest) error
	RemoveOwnership(ctx context.Context, req client.RemoveOwnershipRequest) error
}

// Sessions gates collection access: no user, no collection.
type Sessions interface {
	Current() *domain.Session
}

// AddInput describes a card variant being added. Card supplies the catalog
// fields a newly created record needs for display and filtering.
type AddInput struct {
	Card          domain.CatalogCard
	Parallel      string
	Condition     string
	Quantity      int
	PurchasePrice *float64
	PurchaseDate  *time.Time
}

// UpdateInput addresses a record by its old identity and carries the changes.
// Nil fields are left as they are; NewParallel and NewCondition default to
// the old identity when nil.
type UpdateInput struct {
	CardID        string
	OldParallel   string
	OldCondition  string
	Quantity      *int
	NewParallel   *string
	NewCondition  *string
	PurchasePrice *float64
	PurchaseDate  *time.Time
}

// Store is the in-memory view of one user's collection, kept consistent
// with the remote service. A single mutex serializes every mutation across
// its remote call and local merge, so two writers can never race on the
// same identity key.
type Store struct {
	remote   Remote
	sessions Sessions
	log      zerolog.Logger

	mu      sync.Mutex
	records map[domain.RecordKey]*domain.OwnershipRecord
	order   []domain.RecordKey
}

// New creates an empty collection store. Call Load to populate it.
func New(remote Remote, sessions Sessions, log zerolog.Logger) *Store {
	return &Store{
		remote:   remote,
		sessions: sessions,
		log:      log.With().Str("component", "collection").Logger(),
		records:  make(map[domain.RecordKey]*domain.OwnershipRecord),
	}
}

// Load replaces the in-memory collection with the remote one.
func (s *Store) Load(ctx context.Context) error {
	sess, err := s.session()
	if err != nil {
		return err
	}

	fetched, err := s.remote.Collection(ctx, sess.Profile.ID)
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[domain.RecordKey]*domain.OwnershipRecord, len(fetched))
	s.order = s.order[:0]
	for i := range fetched {
		r := fetched[i]
		key := r.Key()
		if existing, ok := s.records[key]; ok {
			// The service should never hand back duplicate keys, but
			// collapse them rather than violate uniqueness locally.
			existing.Quantity += r.Quantity
			s.log.Warn().Str("card_id", key.CardID).Msg("duplicate key in remote collection, merged")
			continue
		}
		s.records[key] = &r
		s.order = append(s.order, key)
	}

	s.log.Debug().Int("records", len(s.records)).Msg("collection loaded")
	return nil
}

// Add records newly acquired quantity. If the identity key already exists
// the quantities are summed and purchase price/date are overwritten with the
// new values: adding the same variant twice at different prices keeps only
// the latest price.
func (s *Store) Add(ctx context.Context, in AddInput) error {
	if in.Quantity < 1 {
		return &domain.ValidationError{Msg: "quantity must be at least 1"}
	}
	sess, err := s.session()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	op := uuid.NewString()
	err = s.remote.AddOwnership(ctx, client.AddOwnershipRequest{
		UserID:        sess.Profile.ID,
		CardID:        in.Card.ID,
		Quantity:      in.Quantity,
		Parallel:      in.Parallel,
		PurchasePrice: in.PurchasePrice,
		PurchaseDate:  in.PurchaseDate,
		Condition:     in.Condition,
	})
	if err != nil {
		s.log.Warn().Str("op", op).Err(err).Msg("remote add failed")
		return err
	}

	key := domain.RecordKey{CardID: in.Card.ID, Parallel: in.Parallel, Condition: in.Condition}
	if existing, ok := s.records[key]; ok {
		existing.Quantity += in.Quantity
		existing.PurchasePrice = in.PurchasePrice
		existing.PurchaseDate = in.PurchaseDate
		s.log.Info().Str("op", op).Str("card_id", key.CardID).Int("quantity", existing.Quantity).Msg("added to existing record")
		return nil
	}

	s.records[key] = &domain.OwnershipRecord{
		CardID:          in.Card.ID,
		Year:            in.Card.Year,
		SetName:         in.Card.SetName,
		CardNumber:      in.Card.CardNumber,
		DriverName:      in.Card.DriverName,
		ConstructorName: in.Card.ConstructorName,
		RookieCard:      in.Card.RookieCard,
		ImageURL:        in.Card.ImageURL,
		Parallel:        in.Parallel,
		Condition:       in.Condition,
		Quantity:        in.Quantity,
		PurchasePrice:   in.PurchasePrice,
		PurchaseDate:    in.PurchaseDate,
	}
	s.order = append(s.order, key)
	s.log.Info().Str("op", op).Str("card_id", key.CardID).Msg("record created")
	return nil
}

// Update rewrites a record addressed by its old identity. When the identity
// changes and the new key is already occupied, the source quantity folds
// into the destination record and the source disappears; the key-uniqueness
// invariant holds through every update.
func (s *Store) Update(ctx context.Context, in UpdateInput) error {
	if in.Quantity != nil && *in.Quantity < 1 {
		return &domain.ValidationError{Msg: "quantity must be at least 1"}
	}
	sess, err := s.session()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	oldKey := domain.RecordKey{CardID: in.CardID, Parallel: in.OldParallel, Condition: in.OldCondition}
	src, ok := s.records[oldKey]
	if !ok {
		return &domain.NotFoundError{Msg: fmt.Sprintf("no record for card %s (%s, %s)", in.CardID, displayParallel(in.OldParallel), in.OldCondition)}
	}

	newKey := oldKey
	if in.NewParallel != nil {
		newKey.Parallel = *in.NewParallel
	}
	if in.NewCondition != nil {
		newKey.Condition = *in.NewCondition
	}

	op := uuid.NewString()
	req := client.UpdateOwnershipRequest{
		UserID:        sess.Profile.ID,
		CardID:        in.CardID,
		OldParallel:   in.OldParallel,
		Quantity:      in.Quantity,
		Parallel:      newKey.Parallel,
		PurchasePrice: in.PurchasePrice,
		PurchaseDate:  in.PurchaseDate,
		Condition:     newKey.Condition,
	}
	if err := s.remote.UpdateOwnership(ctx, req); err != nil {
		s.log.Warn().Str("op", op).Err(err).Msg("remote update failed")
		return err
	}

	if in.Quantity != nil {
		src.Quantity = *in.Quantity
	}
	if in.PurchasePrice != nil {
		src.PurchasePrice = in.PurchasePrice
	}
	if in.PurchaseDate != nil {
		src.PurchaseDate = in.PurchaseDate
	}

	if newKey == oldKey {
		s.log.Info().Str("op", op).Str("card_id", in.CardID).Msg("record updated in place")
		return nil
	}

	src.Parallel = newKey.Parallel
	src.Condition = newKey.Condition
	delete(s.records, oldKey)

	if dst, occupied := s.records[newKey]; occupied {
		dst.Quantity += src.Quantity
		dst.PurchasePrice = src.PurchasePrice
		dst.PurchaseDate = src.PurchaseDate
		s.dropFromOrder(oldKey)
		s.log.Info().Str("op", op).Str("card_id", in.CardID).Int("quantity", dst.Quantity).Msg("re-key merged into existing record")
		return nil
	}

	s.records[newKey] = src
	s.replaceInOrder(oldKey, newKey)
	s.log.Info().Str("op", op).Str("card_id", in.CardID).Msg("record re-keyed")
	return nil
}

// Remove subtracts quantity from the record at the given identity. When the
// remainder reaches zero the record is deleted. Subtracting more than is
// owned is a caller error; it is logged and clamped to deletion rather than
// ever storing a negative quantity.
func (s *Store) Remove(ctx context.Context, cardID, parallel, condition string, quantity int) error {
	if quantity < 1 {
		return &domain.ValidationError{Msg: "quantity must be at least 1"}
	}
	sess, err := s.session()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.RecordKey{CardID: cardID, Parallel: parallel, Condition: condition}
	rec, ok := s.records[key]
	if !ok {
		return &domain.NotFoundError{Msg: fmt.Sprintf("no record for card %s (%s, %s)", cardID, displayParallel(parallel), condition)}
	}

	op := uuid.NewString()
	err = s.remote.RemoveOwnership(ctx, client.RemoveOwnershipRequest{
		UserID:             sess.Profile.ID,
		CardID:             cardID,
		QuantityToSubtract: quantity,
		Parallel:           parallel,
		Condition:          condition,
	})
	if err != nil {
		s.log.Warn().Str("op", op).Err(err).Msg("remote remove failed")
		return err
	}

	remaining := rec.Quantity - quantity
	if remaining < 0 {
		s.log.Warn().Str("op", op).Str("card_id", cardID).Int("owned", rec.Quantity).Int("subtracted", quantity).Msg("removed more than owned, clamping to deletion")
	}
	if remaining <= 0 {
		delete(s.records, key)
		s.dropFromOrder(key)
		s.log.Info().Str("op", op).Str("card_id", cardID).Msg("record deleted")
		return nil
	}

	rec.Quantity = remaining
	s.log.Info().Str("op", op).Str("card_id", cardID).Int("quantity", remaining).Msg("quantity reduced")
	return nil
}

// Snapshot returns a copy of every record in insertion order.
func (s *Store) Snapshot() []domain.OwnershipRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.OwnershipRecord, 0, len(s.order))
	for _, key := range s.order {
		if rec, ok := s.records[key]; ok {
			out = append(out, *rec)
		}
	}
	return out
}

func (s *Store) session() (*domain.Session, error) {
	sess := s.sessions.Current()
	if sess == nil {
		return nil, &domain.AuthError{Msg: "not logged in"}
	}
	return sess, nil
}

func (s *Store) dropFromOrder(key domain.RecordKey) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *Store) replaceInOrder(oldKey, newKey domain.RecordKey) {
	for i, k := range s.order {
		if k == oldKey {
			s.order[i] = newKey
			return
		}
	}
}

func displayParallel(parallel string) string {
	if parallel == "" {
		return "Base"
	}
	return parallel
}
