package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"faqbot/internal/domain"
)

var (
	bucketQuestions  = []byte("questions")
	bucketAnswers    = []byte("answers")
	bucketEmbeddings = []byte("embeddings")
	bucketMeta       = []byte("meta")
	keyStats         = []byte("corpus_stats")
)

// dataBuckets hold the three position-keyed collections.
var dataBuckets = [][]byte{bucketQuestions, bucketAnswers, bucketEmbeddings}

// BoltStore persists a built FAQ index. Questions, answers and embeddings
// live in separate buckets keyed by corpus position.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range append(dataBuckets, bucketMeta) {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type storedVector struct {
	Vector []float32 `json:"v"`
}

func positionKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}

// PutEntries replaces the stored corpus with entries, in order.
func (s *BoltStore) PutEntries(entries []domain.FAQEntry, model string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range dataBuckets {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		questions := tx.Bucket(bucketQuestions)
		answers := tx.Bucket(bucketAnswers)
		embeddings := tx.Bucket(bucketEmbeddings)

		dim := 0
		for i, e := range entries {
			if i == 0 {
				dim = len(e.Embedding)
			}
			key := positionKey(i)
			if err := questions.Put(key, []byte(e.Question)); err != nil {
				return err
			}
			if err := answers.Put(key, []byte(e.Answer)); err != nil {
				return err
			}
			data, err := json.Marshal(storedVector{Vector: e.Embedding})
			if err != nil {
				return err
			}
			if err := embeddings.Put(key, data); err != nil {
				return err
			}
		}

		stats := domain.Stats{Entries: len(entries), Dimension: dim, Model: model}
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyStats, data)
	})
}

// LoadAligned reads the three collections back in corpus order. It fails
// with ErrCorrupt when their lengths differ or positions are not contiguous.
func (s *BoltStore) LoadAligned() (questions, answers []string, embeddings [][]float32, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		if err := readContiguous(tx.Bucket(bucketQuestions), func(v []byte) error {
			questions = append(questions, string(v))
			return nil
		}); err != nil {
			return fmt.Errorf("questions: %w", err)
		}
		if err := readContiguous(tx.Bucket(bucketAnswers), func(v []byte) error {
			answers = append(answers, string(v))
			return nil
		}); err != nil {
			return fmt.Errorf("answers: %w", err)
		}
		return readContiguous(tx.Bucket(bucketEmbeddings), func(v []byte) error {
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("%w: embedding %d: %v", ErrCorrupt, len(embeddings), err)
			}
			embeddings = append(embeddings, stored.Vector)
			return nil
		})
	})
	if err != nil {
		return nil, nil, nil, err
	}

	if len(questions) != len(answers) || len(questions) != len(embeddings) {
		return nil, nil, nil, fmt.Errorf("%w: %d questions, %d answers, %d embeddings",
			ErrCorrupt, len(questions), len(answers), len(embeddings))
	}
	return questions, answers, embeddings, nil
}

// readContiguous walks a bucket in key order and checks that keys are the
// positions 0..n-1.
func readContiguous(b *bbolt.Bucket, fn func(v []byte) error) error {
	if b == nil {
		return nil
	}
	want := uint64(0)
	return b.ForEach(func(k, v []byte) error {
		if len(k) != 8 || binary.BigEndian.Uint64(k) != want {
			return fmt.Errorf("%w: missing position %d", ErrCorrupt, want)
		}
		want++
		return fn(v)
	})
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
