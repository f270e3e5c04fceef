package keyring

import (
	"errors"
	"testing"
)

func TestStore_ImplementsInterface(t *testing.T) {
	var _ Store = (*SystemStore)(nil)
	var _ Store = (*EnvStore)(nil)
	var _ Store = (*MockStore)(nil)
}

func TestMockStore_SetAndGet(t *testing.T) {
	store := NewMockStore()

	if err := store.Set(ServiceName, KeyPassword, "hunter2"); err != nil {
		t.Fatalf("Set() error = %v, want nil", err)
	}

	got, err := store.Get(ServiceName, KeyPassword)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if got != "hunter2" {
		t.Errorf("Get() = %q, want %q", got, "hunter2")
	}
}

func TestMockStore_GetNotFound(t *testing.T) {
	store := NewMockStore()

	_, err := store.Get(ServiceName, "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMockStore_IsolatedByService(t *testing.T) {
	store := NewMockStore()

	_ = store.Set("service1", "key", "value1")
	_ = store.Set("service2", "key", "value2")

	got1, _ := store.Get("service1", "key")
	got2, _ := store.Get("service2", "key")

	if got1 != "value1" || got2 != "value2" {
		t.Errorf("Get() = %q, %q, want %q, %q", got1, got2, "value1", "value2")
	}
}

func TestMockStore_Errors(t *testing.T) {
	testErr := errors.New("keyring locked")
	store := NewMockStore().WithGetError(testErr).WithSetError(testErr).WithDeleteError(testErr)

	if _, err := store.Get(ServiceName, KeyPassword); !errors.Is(err, testErr) {
		t.Errorf("Get() error = %v, want %v", err, testErr)
	}
	if err := store.Set(ServiceName, KeyPassword, "x"); !errors.Is(err, testErr) {
		t.Errorf("Set() error = %v, want %v", err, testErr)
	}
	if err := store.Delete(ServiceName, KeyPassword); !errors.Is(err, testErr) {
		t.Errorf("Delete() error = %v, want %v", err, testErr)
	}
}

func TestEnvStore_GetFromEnvVar(t *testing.T) {
	store := NewEnvStore(NewMockStore().WithPassword("keyring-password"))
	t.Setenv(EnvPassword, "env-password")

	got, err := store.Get(ServiceName, KeyPassword)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if got != "env-password" {
		t.Errorf("Get() = %q, want %q", got, "env-password")
	}
}

func TestEnvStore_FallbackToUnderlying(t *testing.T) {
	store := NewEnvStore(NewMockStore().WithPassword("keyring-password"))
	t.Setenv(EnvPassword, "")

	got, err := store.Get(ServiceName, KeyPassword)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if got != "keyring-password" {
		t.Errorf("Get() = %q, want %q", got, "keyring-password")
	}
}

func TestEnvStore_EnvVarOnlyForPassword(t *testing.T) {
	mock := NewMockStore()
	_ = mock.Set(ServiceName, "other_key", "other-value")
	store := NewEnvStore(mock)
	t.Setenv(EnvPassword, "env-password")

	got, err := store.Get(ServiceName, "other_key")
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if got != "other-value" {
		t.Errorf("Get() = %q, want %q", got, "other-value")
	}
}

func TestEnvStore_WritesPassThrough(t *testing.T) {
	mock := NewMockStore()
	store := NewEnvStore(mock)

	if err := store.Set(ServiceName, KeyPassword, "new-password"); err != nil {
		t.Fatalf("Set() error = %v, want nil", err)
	}
	if got, _ := mock.Get(ServiceName, KeyPassword); got != "new-password" {
		t.Errorf("underlying Get() = %q, want %q", got, "new-password")
	}

	if err := store.Delete(ServiceName, KeyPassword); err != nil {
		t.Fatalf("Delete() error = %v, want nil", err)
	}
	if _, err := mock.Get(ServiceName, KeyPassword); !errors.Is(err, ErrNotFound) {
		t.Errorf("underlying Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestPasswordHelpers(t *testing.T) {
	store := NewMockStore()

	if _, err := Password(store); !errors.Is(err, ErrNotFound) {
		t.Errorf("Password() error = %v, want ErrNotFound", err)
	}

	if err := SetPassword(store, "s3cret"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	got, err := Password(store)
	if err != nil {
		t.Fatalf("Password() error = %v", err)
	}
	if got != "s3cret" {
		t.Errorf("Password() = %q, want %q", got, "s3cret")
	}

	if err := DeletePassword(store); err != nil {
		t.Fatalf("DeletePassword() error = %v", err)
	}
	if _, err := Password(store); !errors.Is(err, ErrNotFound) {
		t.Errorf("Password() after delete error = %v, want ErrNotFound", err)
	}
}

func TestPasswordHelpers_WrapErrors(t *testing.T) {
	testErr := errors.New("dbus unavailable")
	store := NewMockStore().WithGetError(testErr).WithSetError(testErr)

	if _, err := Password(store); !errors.Is(err, testErr) {
		t.Errorf("Password() error = %v, want wrapped %v", err, testErr)
	}
	if err := SetPassword(store, "x"); !errors.Is(err, testErr) {
		t.Errorf("SetPassword() error = %v, want wrapped %v", err, testErr)
	}
}
