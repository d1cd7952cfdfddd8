// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName_Empty(t *testing.T) {
	err := validateName("")
	assert.True(t, IsStatus(err, ErrNSInval))
}

func TestValidateName_TooLong(t *testing.T) {
	err := validateName(strings.Repeat("a", MaxNamespaceName+1))
	assert.True(t, IsStatus(err, ErrNSInval))
}

func TestValidateName_Valid(t *testing.T) {
	assert.NoError(t, validateName("customers"))
}

func TestNamespaceManager_NewHandleCachesByName(t *testing.T) {
	mgr, err := NewNamespaceManager(8)
	require.NoError(t, err)

	h1 := mgr.newHandle("customers")
	h2 := mgr.newHandle("customers")
	assert.Same(t, h1, h2)

	got, ok := mgr.Lookup("customers")
	require.True(t, ok)
	assert.Same(t, h1, got)
}

func TestNamespaceManager_Forget(t *testing.T) {
	mgr, err := NewNamespaceManager(8)
	require.NoError(t, err)

	h1 := mgr.newHandle("customers")
	mgr.forget("customers")
	_, ok := mgr.Lookup("customers")
	assert.False(t, ok)

	h2 := mgr.newHandle("customers")
	assert.NotSame(t, h1, h2)
}

func TestNamespaceHandle_AttachDetachRefcount(t *testing.T) {
	h := &NamespaceHandle{name: "ns"}
	assert.Equal(t, int32(0), h.Refs())
	h.attach()
	h.attach()
	assert.Equal(t, int32(2), h.Refs())
	h.detach()
	assert.Equal(t, int32(1), h.Refs())
}

func TestNamespaceHandle_MarkDeleted(t *testing.T) {
	h := &NamespaceHandle{name: "ns"}
	assert.False(t, h.Deleted())
	h.markDeleted()
	assert.True(t, h.Deleted())
}

func TestNewNamespaceManager_NonPositiveCapacityDefaults(t *testing.T) {
	mgr, err := NewNamespaceManager(0)
	require.NoError(t, err)
	assert.NotNil(t, mgr)
}
