// Package redis implements the suggest Provider interface using Redis as the storage backend.
// Every rune position of an indexed text contributes one member to a sorted set, so a
// ZRANGEBYLEX prefix scan finds items containing the query anywhere in their text.
// Item payloads are stored msgpack-encoded and returned unchanged by Search.
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"

	"github.com/remiges-tech/jsonsuggest/providers"
)

const (
	// prefixSet is the Redis key prefix for sorted sets storing tokens → IDs.
	prefixSet = "js:set:"

	// prefixItem is the Redis key prefix for hash maps storing ID → msgpack payload.
	prefixItem = "js:item:"

	// prefixText is the Redis key prefix for hash maps storing ID → original text.
	prefixText = "js:text:"

	// prefixScore is the Redis key prefix for sorted sets ranking IDs by index score.
	prefixScore = "js:score:"

	// prefixMeta is the Redis key prefix for hash maps storing ID → case sensitivity.
	prefixMeta = "js:meta:"

	// defaultNamespace is used when Config.Namespace is empty.
	defaultNamespace = "default"

	// defaultMaxTokenLength bounds the runes stored per position.
	defaultMaxTokenLength = 16

	// lexicographicMaxChar is the lexicographic maximum character for ZRANGEBYLEX upper bound.
	lexicographicMaxChar = "\xff"

	// memberSeparator splits token, ID and position inside a member.
	memberSeparator = "\x00"

	// memberParts is the number of fields in a member: token, id, position.
	memberParts = 3
)

// ErrMissingID is returned by Index for items without an "id" field.
var ErrMissingID = errors.New("item has no id")

// Provider implements the suggest Provider and Indexer interfaces using Redis.
// All methods are safe for concurrent use.
type Provider struct {
	client    *redis.Client
	namespace string
	maxToken  int
}

// Config holds Redis connection parameters.
type Config struct {
	// Addr is the Redis server address in the format "host:port".
	Addr string

	// Password is the Redis password (empty string for no password).
	Password string

	// DB is the Redis database number (0-15, default is 0).
	// Redis Cluster only supports DB 0.
	DB int

	// Namespace separates independent datasets on one server. Default: "default".
	Namespace string

	// MaxTokenLength is the longest token stored per position, in runes.
	// Longer queries are scanned by their first MaxTokenLength runes and
	// then verified against the stored text. Default: 16.
	MaxTokenLength int
}

// New creates a new Redis provider with the given configuration.
// It establishes a connection to Redis and verifies connectivity with a PING command.
func New(config Config) (*Provider, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password, // pragma: allowlist secret
		DB:       config.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	namespace := config.Namespace
	if namespace == "" {
		namespace = defaultNamespace
	}
	maxToken := config.MaxTokenLength
	if maxToken <= 0 {
		maxToken = defaultMaxTokenLength
	}

	return &Provider{
		client:    client,
		namespace: namespace,
		maxToken:  maxToken,
	}, nil
}

// Index adds or replaces an item. The item's "id" field identifies it and
// options.Property names the field whose text is searchable.
func (p *Provider) Index(ctx context.Context, item providers.Item, options providers.IndexOptions) error {
	id := item.ID()
	if id == "" {
		return ErrMissingID
	}
	property := options.Property
	if property == "" {
		property = providers.DefaultProperty
	}
	text := item.String(property)

	payload, err := msgpack.Marshal(map[string]any(item))
	if err != nil {
		return fmt.Errorf("failed to encode item %s: %w", id, err)
	}

	// Drop the tokens of a previous version before adding the new ones.
	if err := p.Delete(ctx, id); err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	for pos, token := range p.tokens(normalize(text, options.CaseSensitive)) {
		pipe.ZAdd(ctx, p.key(prefixSet), &redis.Z{
			Score:  0,
			Member: createMember(token, id, pos),
		})
	}
	pipe.ZAdd(ctx, p.key(prefixScore), &redis.Z{Score: options.Score, Member: id})
	pipe.HSet(ctx, p.key(prefixText), id, text)
	pipe.HSet(ctx, p.key(prefixItem), id, payload)
	if options.CaseSensitive {
		pipe.HSet(ctx, p.key(prefixMeta), id, "1")
	} else {
		pipe.HDel(ctx, p.key(prefixMeta), id)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to index item %s: %w", id, err)
	}
	return nil
}

// Search returns the items whose text contains query, highest index score
// first. An empty query returns every item.
func (p *Provider) Search(ctx context.Context, query string, options providers.QueryOptions) ([]providers.Item, error) {
	searchQuery := normalize(query, options.CaseSensitive)
	lookup := truncateRunes(searchQuery, p.maxToken)

	by := &redis.ZRangeBy{Min: "-", Max: "+"}
	if lookup != "" {
		by.Min = createLexicographicStartKey(lookup)
		by.Max = createLexicographicEndKey(lookup)
	}

	members, err := p.client.ZRangeByLex(ctx, p.key(prefixSet), by).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}

	ids := extractUniqueIDs(members)
	if lookup != searchQuery {
		ids, err = p.verifyContains(ctx, ids, searchQuery, options.CaseSensitive)
		if err != nil {
			return nil, err
		}
	}
	if ids, err = p.rank(ctx, ids); err != nil {
		return nil, err
	}
	return p.fetchItems(ctx, limitResults(ids, options.MaxResults))
}

// Delete removes an item from the index.
func (p *Provider) Delete(ctx context.Context, id string) error {
	text, err := p.client.HGet(ctx, p.key(prefixText), id).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get text for deletion: %w", err)
	}
	if errors.Is(err, redis.Nil) {
		return nil
	}

	caseSensitive := false
	meta, metaErr := p.client.HGet(ctx, p.key(prefixMeta), id).Result()
	if metaErr == nil && meta == "1" {
		caseSensitive = true
	}

	pipe := p.client.Pipeline()
	for pos, token := range p.tokens(normalize(text, caseSensitive)) {
		pipe.ZRem(ctx, p.key(prefixSet), createMember(token, id, pos))
	}
	pipe.ZRem(ctx, p.key(prefixScore), id)
	pipe.HDel(ctx, p.key(prefixText), id)
	pipe.HDel(ctx, p.key(prefixItem), id)
	pipe.HDel(ctx, p.key(prefixMeta), id)

	_, err = pipe.Exec(ctx)
	return err
}

// DeleteAll removes every item of the provider's namespace.
func (p *Provider) DeleteAll(ctx context.Context) error {
	return p.client.Del(ctx,
		p.key(prefixSet),
		p.key(prefixScore),
		p.key(prefixText),
		p.key(prefixItem),
		p.key(prefixMeta),
	).Err()
}

// Close closes the Redis connection
func (p *Provider) Close() error {
	return p.client.Close()
}

func (p *Provider) key(prefix string) string {
	return prefix + p.namespace
}

// tokens returns, for each rune position of text, the following runes up to
// the maximum token length.
func (p *Provider) tokens(text string) []string {
	runes := []rune(text)
	tokens := make([]string, 0, len(runes))
	for start := range runes {
		end := min(start+p.maxToken, len(runes))
		tokens = append(tokens, string(runes[start:end]))
	}
	return tokens
}

// verifyContains keeps the IDs whose stored text contains query.
func (p *Provider) verifyContains(ctx context.Context, ids []string, query string, caseSensitive bool) ([]string, error) {
	if len(ids) == 0 {
		return ids, nil
	}
	texts, err := p.client.HMGet(ctx, p.key(prefixText), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch texts: %w", err)
	}

	kept := ids[:0]
	for i, id := range ids {
		text, ok := texts[i].(string)
		if ok && strings.Contains(normalize(text, caseSensitive), query) {
			kept = append(kept, id)
		}
	}
	return kept, nil
}

// rank orders ids by descending index score. Ties keep their lexical order.
func (p *Provider) rank(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) < 2 {
		return ids, nil
	}
	pipe := p.client.Pipeline()
	cmds := make([]*redis.FloatCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.ZScore(ctx, p.key(prefixScore), id)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to fetch scores: %w", err)
	}

	byID := make(map[string]float64, len(ids))
	for i, id := range ids {
		byID[id] = cmds[i].Val()
	}
	slices.SortStableFunc(ids, func(a, b string) int {
		switch {
		case byID[a] > byID[b]:
			return -1
		case byID[a] < byID[b]:
			return 1
		default:
			return 0
		}
	})
	return ids, nil
}

// fetchItems decodes the stored payloads for the given IDs.
func (p *Provider) fetchItems(ctx context.Context, ids []string) ([]providers.Item, error) {
	items := make([]providers.Item, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	payloads, err := p.client.HMGet(ctx, p.key(prefixItem), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	for i, id := range ids {
		raw, ok := payloads[i].(string)
		if !ok {
			continue
		}
		var item providers.Item
		if err := msgpack.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("failed to decode item %s: %w", id, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func normalize(text string, caseSensitive bool) string {
	text = norm.NFC.String(text)
	if !caseSensitive {
		text = strings.ToLower(text)
	}
	return text
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func createLexicographicStartKey(query string) string {
	return "[" + query
}

func createLexicographicEndKey(query string) string {
	return "[" + query + lexicographicMaxChar
}

func createMember(token, id string, position int) string {
	return token + memberSeparator + id + memberSeparator + strconv.Itoa(position)
}

func extractIDFromMember(member string) string {
	parts := strings.Split(member, memberSeparator)
	if len(parts) != memberParts {
		return ""
	}
	return parts[1]
}

func extractUniqueIDs(members []string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, member := range members {
		id := extractIDFromMember(member)
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func limitResults(ids []string, maxResults int) []string {
	if maxResults > 0 && len(ids) > maxResults {
		return ids[:maxResults]
	}
	return ids
}
