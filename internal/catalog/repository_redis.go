package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisRepository stores products in one Redis hash keyed by product id, with set and sorted-set
// secondary indexes on category, status, name and creation time.
type RedisRepository struct {
	client redis.UniversalClient
	prefix string

	mu       sync.Mutex
	upgraded bool
}

var (
	_ Repository = (*RedisRepository)(nil)
	_ Replacer   = (*RedisRepository)(nil)
)

// NewRedisRepository returns a repository using keys under prefix. The client stays owned by the caller.
func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = StoreName
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(parts ...string) string {
	return r.prefix + ":" + strings.Join(parts, ":")
}

func (r *RedisRepository) productsKey() string { return r.key("products") }
func (r *RedisRepository) schemaKey() string   { return r.key("schema") }
func (r *RedisRepository) nameKey() string     { return r.key("idx", "name") }
func (r *RedisRepository) createdKey() string  { return r.key("idx", "created_at") }

func (r *RedisRepository) categoryKey(category string) string {
	return r.key("idx", "category", category)
}

func (r *RedisRepository) statusKey(status Status) string {
	return r.key("idx", "status", string(status))
}

// open records the schema version the first time the repository is used.
func (r *RedisRepository) open(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upgraded {
		return nil
	}

	created, err := r.client.SetNX(ctx, r.schemaKey(), SchemaVersion, 0).Result()
	if err != nil {
		return unavailableErr("open", err)
	}
	if !created {
		version, err := r.client.Get(ctx, r.schemaKey()).Int()
		if err != nil {
			return unavailableErr("open", err)
		}
		if version != SchemaVersion {
			return unavailableErr("open", fmt.Errorf("unsupported schema version %d", version))
		}
	}
	r.upgraded = true
	return nil
}

func (r *RedisRepository) addIndexes(ctx context.Context, pipe redis.Pipeliner, p Product) {
	pipe.SAdd(ctx, r.categoryKey(p.Category), p.ID)
	pipe.SAdd(ctx, r.statusKey(p.Status), p.ID)
	pipe.ZAdd(ctx, r.nameKey(), redis.Z{Member: nameMember(p)})
	pipe.ZAdd(ctx, r.createdKey(), redis.Z{Score: float64(p.CreatedAt.UnixMilli()), Member: p.ID})
}

func (r *RedisRepository) removeIndexes(ctx context.Context, pipe redis.Pipeliner, p Product) {
	pipe.SRem(ctx, r.categoryKey(p.Category), p.ID)
	pipe.SRem(ctx, r.statusKey(p.Status), p.ID)
	pipe.ZRem(ctx, r.nameKey(), nameMember(p))
	pipe.ZRem(ctx, r.createdKey(), p.ID)
}

// nameMember sorts lexicographically by name inside a zero-score sorted set.
func nameMember(p Product) string {
	return p.Name + "\x00" + p.ID
}

func (r *RedisRepository) GetAll(ctx context.Context) ([]Product, error) {
	if err := r.open(ctx); err != nil {
		return nil, err
	}
	docs, err := r.client.HGetAll(ctx, r.productsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("catalog: redis get all: %w", err)
	}
	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProduct([]byte(doc))
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	sortByID(products)
	return products, nil
}

func (r *RedisRepository) Insert(ctx context.Context, product Product) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	doc, err := encodeProduct(product)
	if err != nil {
		return err
	}
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, r.productsKey(), product.ID).Result()
		if err != nil {
			return fmt.Errorf("catalog: redis insert: %w", err)
		}
		if exists {
			return fmt.Errorf("catalog: redis insert %s: %w", product.ID, ErrDuplicateKey)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.productsKey(), product.ID, doc)
			r.addIndexes(ctx, pipe, product)
			return nil
		})
		if err != nil {
			return fmt.Errorf("catalog: redis insert: %w", err)
		}
		return nil
	}, r.productsKey())
}

func (r *RedisRepository) Put(ctx context.Context, product Product) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	doc, err := encodeProduct(product)
	if err != nil {
		return err
	}
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		previous, found, err := r.load(ctx, tx, product.ID)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if found {
				r.removeIndexes(ctx, pipe, previous)
			}
			pipe.HSet(ctx, r.productsKey(), product.ID, doc)
			r.addIndexes(ctx, pipe, product)
			return nil
		})
		if err != nil {
			return fmt.Errorf("catalog: redis put: %w", err)
		}
		return nil
	}, r.productsKey())
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		previous, found, err := r.load(ctx, tx, id)
		if err != nil || !found {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, r.productsKey(), id)
			r.removeIndexes(ctx, pipe, previous)
			return nil
		})
		if err != nil {
			return fmt.Errorf("catalog: redis delete: %w", err)
		}
		return nil
	}, r.productsKey())
}

func (r *RedisRepository) load(ctx context.Context, tx *redis.Tx, id string) (Product, bool, error) {
	raw, err := tx.HGet(ctx, r.productsKey(), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, fmt.Errorf("catalog: redis load %s: %w", id, err)
	}
	p, err := decodeProduct(raw)
	if err != nil {
		return Product{}, false, err
	}
	return p, true, nil
}

func (r *RedisRepository) BulkInsert(ctx context.Context, products []Product) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}
	docs, err := encodeBatch(products)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := tx.HMGet(ctx, r.productsKey(), ids...).Result()
		if err != nil {
			return fmt.Errorf("catalog: redis bulk insert: %w", err)
		}
		for i, value := range existing {
			if value != nil {
				return fmt.Errorf("catalog: redis bulk insert %s: %w", ids[i], ErrDuplicateKey)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.writeBatch(ctx, pipe, products, docs)
			return nil
		})
		if err != nil {
			return fmt.Errorf("catalog: redis bulk insert: %w", err)
		}
		return nil
	}, r.productsKey())
}

func (r *RedisRepository) Clear(ctx context.Context) error {
	return r.ReplaceAll(ctx, nil)
}

// ReplaceAll drops every product and index key and writes products in one MULTI block.
func (r *RedisRepository) ReplaceAll(ctx context.Context, products []Product) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	docs, err := encodeBatch(products)
	if err != nil {
		return err
	}
	indexKeys, err := r.indexKeys(ctx)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, append(indexKeys, r.productsKey())...)
		r.writeBatch(ctx, pipe, products, docs)
		return nil
	})
	if err != nil {
		return fmt.Errorf("catalog: redis replace all: %w", err)
	}
	return nil
}

func (r *RedisRepository) writeBatch(ctx context.Context, pipe redis.Pipeliner, products []Product, docs map[string]any) {
	if len(docs) == 0 {
		return
	}
	pipe.HSet(ctx, r.productsKey(), docs)
	for _, p := range products {
		r.addIndexes(ctx, pipe, p)
	}
}

func encodeBatch(products []Product) (map[string]any, error) {
	docs := make(map[string]any, len(products))
	for _, p := range products {
		if _, dup := docs[p.ID]; dup {
			return nil, fmt.Errorf("catalog: redis batch %s: %w", p.ID, ErrDuplicateKey)
		}
		doc, err := encodeProduct(p)
		if err != nil {
			return nil, err
		}
		docs[p.ID] = doc
	}
	return docs, nil
}

func (r *RedisRepository) indexKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.key("idx", "*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("catalog: redis scan indexes: %w", err)
	}
	return keys, nil
}

// IDsByCategory returns the ids indexed under category, sorted.
func (r *RedisRepository) IDsByCategory(ctx context.Context, category string) ([]string, error) {
	return r.members(ctx, r.categoryKey(category))
}

// IDsByStatus returns the ids indexed under status, sorted.
func (r *RedisRepository) IDsByStatus(ctx context.Context, status Status) ([]string, error) {
	return r.members(ctx, r.statusKey(status))
}

// IDsByName returns ids ordered by product name.
func (r *RedisRepository) IDsByName(ctx context.Context) ([]string, error) {
	if err := r.open(ctx); err != nil {
		return nil, err
	}
	members, err := r.client.ZRange(ctx, r.nameKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("catalog: redis name index: %w", err)
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if i := strings.LastIndexByte(m, 0); i >= 0 {
			ids = append(ids, m[i+1:])
		}
	}
	return ids, nil
}

func (r *RedisRepository) members(ctx context.Context, key string) ([]string, error) {
	if err := r.open(ctx); err != nil {
		return nil, err
	}
	ids, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("catalog: redis index %s: %w", key, err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op: the client belongs to the caller.
func (r *RedisRepository) Close() error {
	return nil
}
