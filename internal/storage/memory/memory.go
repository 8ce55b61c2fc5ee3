package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// Store keeps the whole ledger in memory. It is safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]core.Account
	categories   map[string]core.Category
	members      map[string]core.Member
	transactions map[string]core.Transaction
	// seq orders rows created within the same clock tick.
	seq   map[string]int
	nextN int
}

func New() *Store {
	return &Store{
		accounts:     make(map[string]core.Account),
		categories:   make(map[string]core.Category),
		members:      make(map[string]core.Member),
		transactions: make(map[string]core.Transaction),
		seq:          make(map[string]int),
	}
}

// NewFromFiles seeds categories and members from seed_categories.txt and
// seed_members.txt in base, one name per line. Missing files are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	now := time.Now().UTC()
	for _, name := range readLines(filepath.Join(base, "seed_categories.txt")) {
		c := core.Category{ID: uuid.NewString(), Name: name, CreatedAt: now}
		s.categories[c.ID] = c
	}
	for _, name := range readLines(filepath.Join(base, "seed_members.txt")) {
		m := core.Member{ID: uuid.NewString(), Name: name, CreatedAt: now}
		s.members[m.ID] = m
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) stamp(id string) {
	s.nextN++
	s.seq[id] = s.nextN
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return fmt.Errorf("account %s already exists", a.ID)
	}
	s.accounts[a.ID] = a
	s.stamp(a.ID)
	return nil
}

func (s *Store) GetAccount(_ context.Context, id string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.Account{}, fmt.Errorf("get account %s: %w", id, core.ErrNotFound)
	}
	return a, nil
}

// ListAccounts returns accounts newest first.
func (s *Store) ListAccounts(context.Context) ([]core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *Store) ListCategories(context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return byName(out[i].Name, out[i].ID, out[j].Name, out[j].ID) })
	return out, nil
}

func (s *Store) CreateMember(_ context.Context, m core.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
	return nil
}

func (s *Store) GetMember(_ context.Context, id string) (core.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return core.Member{}, fmt.Errorf("get member %s: %w", id, core.ErrNotFound)
	}
	return m, nil
}

func (s *Store) ListMembers(context.Context) ([]core.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return byName(out[i].Name, out[i].ID, out[j].Name, out[j].ID) })
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[t.AccountID]; !ok {
		return fmt.Errorf("create transaction: account %s: %w", t.AccountID, core.ErrNotFound)
	}
	t.Account, t.Category, t.Member = nil, nil, nil
	s.transactions[t.ID] = t
	s.stamp(t.ID)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, core.ErrNotFound)
	}
	return s.resolve(t), nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.transactions[t.ID]
	if !ok {
		return fmt.Errorf("update transaction %s: %w", t.ID, core.ErrNotFound)
	}
	t.CreatedAt, t.CreatedBy = cur.CreatedAt, cur.CreatedBy
	t.Account, t.Category, t.Member = nil, nil, nil
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return fmt.Errorf("delete transaction %s: %w", id, core.ErrNotFound)
	}
	delete(s.transactions, id)
	delete(s.seq, id)
	return nil
}

// ListTransactions pages through matching transactions, newest first.
func (s *Store) ListTransactions(_ context.Context, f core.TransactionFilter) ([]core.Transaction, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.inRange(f.Range)
	sort.Slice(matched, func(i, j int) bool { return s.less(matched[j], matched[i]) })

	total := int64(len(matched))
	start := min(max(f.Offset, 0), len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	page := make([]core.Transaction, 0, end-start)
	for _, t := range matched[start:end] {
		page = append(page, s.resolve(t))
	}
	return page, total, nil
}

// TransactionsInRange returns matching transactions oldest first.
func (s *Store) TransactionsInRange(_ context.Context, r core.DateRange) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.inRange(r)
	sort.Slice(matched, func(i, j int) bool { return s.less(matched[i], matched[j]) })
	for i, t := range matched {
		matched[i] = s.resolve(t)
	}
	return matched, nil
}

func (s *Store) SumByType(_ context.Context, r core.DateRange) (map[core.TransactionType]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[core.TransactionType]int64)
	for _, t := range s.transactions {
		if r.Contains(t.Date) {
			out[t.Type] += t.AmountCents
		}
	}
	return out, nil
}

func (s *Store) SumByAccountAndType(context.Context) ([]core.AccountTypeSum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type key struct {
		account string
		typ     core.TransactionType
	}
	sums := make(map[key]int64)
	for _, t := range s.transactions {
		sums[key{t.AccountID, t.Type}] += t.AmountCents
	}
	out := make([]core.AccountTypeSum, 0, len(sums))
	for k, v := range sums {
		out = append(out, core.AccountTypeSum{AccountID: k.account, Type: k.typ, AmountCents: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountID != out[j].AccountID {
			return out[i].AccountID < out[j].AccountID
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (s *Store) inRange(r core.DateRange) []core.Transaction {
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// less orders by date, then creation time, then insertion order.
func (s *Store) less(a, b core.Transaction) bool {
	if !a.Date.Equal(b.Date.Time) {
		return a.Date.Before(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return s.seq[a.ID] < s.seq[b.ID]
}

func (s *Store) resolve(t core.Transaction) core.Transaction {
	if a, ok := s.accounts[t.AccountID]; ok {
		t.Account = &a
	}
	if t.CategoryID != nil {
		if c, ok := s.categories[*t.CategoryID]; ok {
			t.Category = &c
		}
	}
	if t.MemberID != nil {
		if m, ok := s.members[*t.MemberID]; ok {
			t.Member = &m
		}
	}
	return t
}

func byName(a, aID, b, bID string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return aID < bID
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
