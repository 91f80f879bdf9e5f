package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinoosan/bankledger/internal/meta"
)

func TestCodec_RoundTrip(t *testing.T) {
	c := Codec{Currency: testCurrency}
	s := NewState()
	s, _, err := s.Create(Draft{Balance: amt(t, "100.5"), Fields: meta.New(map[string]string{"name": "Ana", "agency": "001"})}, epoch)
	require.NoError(t, err)
	s, _, err = s.Create(Draft{Balance: amt(t, "0")}, epoch.Add(90_000_000))
	require.NoError(t, err)
	s, err = s.Delete(1)
	require.NoError(t, err)
	s, _, err = s.Create(Draft{Balance: amt(t, "7")}, epoch)
	require.NoError(t, err)

	b, err := c.Encode(s)
	require.NoError(t, err)
	got, err := c.Decode(b)
	require.NoError(t, err)

	require.Equal(t, s.NextID, got.NextID)
	require.Len(t, got.Accounts, len(s.Accounts))
	for i := range s.Accounts {
		want, have := s.Accounts[i], got.Accounts[i]
		assert.Equal(t, want.ID, have.ID)
		assert.True(t, want.CreatedAt.Equal(have.CreatedAt))
		assert.Equal(t, want.Fields.Clone(), have.Fields)
		assert.Zero(t, want.Balance.Decimal().Cmp(have.Balance.Decimal()))
	}

	again, err := c.Encode(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(b), string(again))
}

func TestCodec_DocumentShape(t *testing.T) {
	c := Codec{Currency: testCurrency}
	s, _, err := NewState().Create(Draft{Balance: amt(t, "12"), Fields: meta.New(map[string]string{"name": "Ana"})}, epoch)
	require.NoError(t, err)
	b, err := c.Encode(s)
	require.NoError(t, err)

	var raw struct {
		NextID   int64            `json:"nextId"`
		Accounts []map[string]any `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, int64(2), raw.NextID)
	require.Len(t, raw.Accounts, 1)
	acc := raw.Accounts[0]
	assert.Equal(t, float64(1), acc["id"])
	assert.Equal(t, float64(12), acc["balance"])
	assert.Equal(t, "Ana", acc["name"])
	assert.Equal(t, "2026-01-02T03:04:05Z", acc["createdAt"])
}

func TestCodec_DecodeLegacyDocument(t *testing.T) {
	c := Codec{Currency: testCurrency}
	legacy := `{"nextId":3,"accounts":[{"id":2,"name":"Maria","balance":320.75,"timestamp":"2020-09-01T12:00:00.000Z"}]}`
	s, err := c.Decode([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, s.Accounts, 1)
	acc := s.Accounts[0]
	assert.Equal(t, int64(2), acc.ID)
	assert.Equal(t, "Maria", acc.Fields["name"])
	requireAmount(t, "320.75", acc.Balance)
	assert.Equal(t, 2020, acc.CreatedAt.Year())
}

func TestCodec_MissingBalanceIsZero(t *testing.T) {
	c := Codec{Currency: testCurrency}
	s, err := c.Decode([]byte(`{"nextId":2,"accounts":[{"id":1,"name":"Ana"}]}`))
	require.NoError(t, err)
	requireAmount(t, "0", s.Accounts[0].Balance)
}

func TestCodec_DecodeRejectsBadDocuments(t *testing.T) {
	c := Codec{Currency: testCurrency}
	bad := map[string]string{
		"not json":         `{`,
		"non-string field": `{"nextId":2,"accounts":[{"id":1,"balance":1,"age":30}]}`,
		"negative balance": `{"nextId":2,"accounts":[{"id":1,"balance":-1}]}`,
		"stale next id":    `{"nextId":1,"accounts":[{"id":1,"balance":1}]}`,
		"missing id":       `{"nextId":2,"accounts":[{"balance":1}]}`,
	}
	for name, doc := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode([]byte(doc))
			require.Error(t, err)
		})
	}
}
