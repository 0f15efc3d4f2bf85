package contract

import (
	"sort"
	"strings"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// compositeKeyNamespace mirrors the separator Fabric uses when building
// composite keys.
const compositeKeyNamespace = "\x00"

// capturedEvent is one SetEvent call recorded by the mock stub.
type capturedEvent struct {
	name    string
	payload []byte
}

// mockStub is an in-memory world state standing in for a Fabric peer. Only
// the stub methods the contract actually uses are implemented; anything else
// panics through the embedded nil interface.
type mockStub struct {
	shim.ChaincodeStubInterface
	state  map[string][]byte
	events []capturedEvent
	txTime time.Time
}

func newMockStub() *mockStub {
	return &mockStub{
		state:  map[string][]byte{},
		txTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func copyBytes(a []byte) []byte {
	if a == nil {
		return nil
	}
	b := make([]byte, len(a))
	copy(b, a)
	return b
}

func (s *mockStub) GetState(key string) ([]byte, error) {
	return copyBytes(s.state[key]), nil
}

func (s *mockStub) PutState(key string, value []byte) error {
	s.state[key] = copyBytes(value)
	return nil
}

func (s *mockStub) DelState(key string) error {
	delete(s.state, key)
	return nil
}

func (s *mockStub) CreateCompositeKey(objectType string, attributes []string) (string, error) {
	key := compositeKeyNamespace + objectType + compositeKeyNamespace
	for _, attr := range attributes {
		key += attr + compositeKeyNamespace
	}
	return key, nil
}

func (s *mockStub) SplitCompositeKey(compositeKey string) (string, []string, error) {
	parts := strings.Split(strings.Trim(compositeKey, compositeKeyNamespace), compositeKeyNamespace)
	return parts[0], parts[1:], nil
}

func (s *mockStub) GetStateByPartialCompositeKey(objectType string, keys []string) (shim.StateQueryIteratorInterface, error) {
	prefix, _ := s.CreateCompositeKey(objectType, keys)
	matched := []string{}
	for key := range s.state {
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)

	results := make([]*queryresult.KV, 0, len(matched))
	for _, key := range matched {
		results = append(results, &queryresult.KV{Key: key, Value: copyBytes(s.state[key])})
	}
	return &mockIterator{results: results}, nil
}

func (s *mockStub) GetTxTimestamp() (*timestamppb.Timestamp, error) {
	return timestamppb.New(s.txTime), nil
}

func (s *mockStub) SetEvent(name string, payload []byte) error {
	s.events = append(s.events, capturedEvent{name: name, payload: copyBytes(payload)})
	return nil
}

func (s *mockStub) clearEvents() {
	s.events = nil
}

// mockIterator walks a snapshot of matching state entries in key order.
type mockIterator struct {
	results []*queryresult.KV
	pos     int
}

func (it *mockIterator) HasNext() bool {
	return it.pos < len(it.results)
}

func (it *mockIterator) Next() (*queryresult.KV, error) {
	kv := it.results[it.pos]
	it.pos++
	return kv, nil
}

func (it *mockIterator) Close() error {
	return nil
}

// mockClientIdentity returns a fixed principal id.
type mockClientIdentity struct {
	cid.ClientIdentity
	id    string
	mspID string
}

func (m *mockClientIdentity) GetID() (string, error) {
	return m.id, nil
}

func (m *mockClientIdentity) GetMSPID() (string, error) {
	return m.mspID, nil
}

// mockTransactionContext pairs a shared stub with one caller identity, so a
// test can invoke the same ledger as several principals.
type mockTransactionContext struct {
	stub     *mockStub
	identity *mockClientIdentity
}

func (c *mockTransactionContext) GetStub() shim.ChaincodeStubInterface {
	return c.stub
}

func (c *mockTransactionContext) GetClientIdentity() cid.ClientIdentity {
	return c.identity
}

func ctxFor(stub *mockStub, principal string) *mockTransactionContext {
	return &mockTransactionContext{
		stub:     stub,
		identity: &mockClientIdentity{id: principal, mspID: "Org1MSP"},
	}
}
