package keyring

// MockStore is an in-memory Store for tests. Each operation can be made to
// fail with the With*Error builders.
type MockStore struct {
	data   map[string]string
	getErr error
	setErr error
	delErr error
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]string)}
}

func mockKey(service, key string) string {
	return service + ":" + key
}

func (m *MockStore) Get(service, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[mockKey(service, key)]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MockStore) Set(service, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[mockKey(service, key)] = value
	return nil
}

func (m *MockStore) Delete(service, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, mockKey(service, key))
	return nil
}

func (m *MockStore) WithGetError(err error) *MockStore {
	m.getErr = err
	return m
}

func (m *MockStore) WithSetError(err error) *MockStore {
	m.setErr = err
	return m
}

func (m *MockStore) WithDeleteError(err error) *MockStore {
	m.delErr = err
	return m
}

// WithPassword pre-populates the account password.
func (m *MockStore) WithPassword(password string) *MockStore {
	m.data[mockKey(ServiceName, KeyPassword)] = password
	return m
}
