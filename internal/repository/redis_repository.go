package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-tracker/internal/domain"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

// redisLoanRepository stores each loan as one JSON document, the remote
// document-store backend. A set holds the ids of every stored loan.
type redisLoanRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisLoanRepository(client *redis.Client, prefix string) LoanRepository {
	return &redisLoanRepository{client: client, prefix: prefix}
}

func (r *redisLoanRepository) loanKey(id string) string {
	return r.prefix + "loan:" + id
}

func (r *redisLoanRepository) indexKey() string {
	return r.prefix + "loans"
}

func (r *redisLoanRepository) Get(ctx context.Context, loanID string) (*domain.Loan, error) {
	raw, err := r.client.Get(ctx, r.loanKey(loanID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, customError.ErrLoanNotFound
		}
		return nil, err
	}

	var loan domain.Loan
	if err := json.Unmarshal(raw, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// Save checks the stored version under WATCH so a concurrent writer aborts the
// transaction instead of overwriting it.
func (r *redisLoanRepository) Save(ctx context.Context, loan *domain.Loan) error {
	key := r.loanKey(loan.ID)

	next := loan.Clone()
	next.Version = loan.Version + 1
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if loan.Version != 0 {
				return customError.ErrVersionConflict
			}
		case err != nil:
			return err
		default:
			var stored struct {
				Version int `json:"version"`
			}
			if err := json.Unmarshal(raw, &stored); err != nil {
				return err
			}
			if loan.Version == 0 || stored.Version != loan.Version {
				return customError.ErrVersionConflict
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, r.indexKey(), loan.ID)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return customError.ErrVersionConflict
	}
	if err != nil {
		return err
	}

	loan.Version = next.Version
	return nil
}

func (r *redisLoanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Loan{}, nil
	}

	sort.Strings(ids)
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.loanKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	loans := make([]*domain.Loan, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// id left in the index after its document was removed
			continue
		}
		var loan domain.Loan
		if err := json.Unmarshal([]byte(s), &loan); err != nil {
			return nil, err
		}
		loans = append(loans, &loan)
	}

	sort.SliceStable(loans, func(i, j int) bool {
		return loans[i].CreatedAt.Before(loans[j].CreatedAt)
	})
	return loans, nil
}

type redisUserRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisUserRepository(client *redis.Client, prefix string) UserRepository {
	return &redisUserRepository{client: client, prefix: prefix}
}

func (r *redisUserRepository) userKey(id string) string {
	return r.prefix + "user:" + id
}

func (r *redisUserRepository) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	raw, err := r.client.Get(ctx, r.userKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, customError.ErrUserNotFound
		}
		return nil, err
	}

	var user domain.UserProfile
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *redisUserRepository) Save(ctx context.Context, user *domain.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.userKey(user.ID), data, 0).Err()
}
