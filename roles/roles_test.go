package roles

import (
	"context"
	"testing"

	"github.com/go-playground/errors/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPermissionManager is a mock implementation of the PermissionManager interface.
type MockPermissionManager struct {
	mock.Mock
}

func (m *MockPermissionManager) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPermissionManager) AddUserPermissions(ctx context.Context, userID string, permissions ...string) error {
	args := m.Called(ctx, userID, permissions)
	return args.Error(0)
}

func (m *MockPermissionManager) DeleteUserPermissions(ctx context.Context, userID string, permissions ...string) error {
	args := m.Called(ctx, userID, permissions)
	return args.Error(0)
}

func TestPermissionAssignmentClient_AssignPermissions(t *testing.T) {
	t.Parallel()

	userID := "3f1c2a76-7c1e-4d55-9c61-1f0f3f7f5e11"

	tests := []struct {
		name              string
		permissions       []string
		mockManager       func(m *MockPermissionManager)
		wantHasPermission bool
		wantErr           bool
	}{
		{
			name:        "grant new permissions, user has none",
			permissions: []string{"read:analytics", "write:schedule"},
			mockManager: func(m *MockPermissionManager) {
				m.On("UserPermissions", mock.Anything, userID).Return([]string{}, nil).Once()
				m.On("AddUserPermissions", mock.Anything, userID, []string{"read:analytics", "write:schedule"}).Return(nil).Once()
			},
			wantHasPermission: true,
		},
		{
			name:        "existing permissions, no changes",
			permissions: []string{"read:analytics"},
			mockManager: func(m *MockPermissionManager) {
				m.On("UserPermissions", mock.Anything, userID).Return([]string{"read:analytics"}, nil).Once()
			},
			wantHasPermission: true,
		},
		{
			name:        "revoke stale permission and grant new one",
			permissions: []string{"write:schedule", "read:reports"},
			mockManager: func(m *MockPermissionManager) {
				m.On("UserPermissions", mock.Anything, userID).Return([]string{"read:analytics", "write:schedule"}, nil).Once()
				m.On("AddUserPermissions", mock.Anything, userID, []string{"read:reports"}).Return(nil).Once()
				m.On("DeleteUserPermissions", mock.Anything, userID, []string{"read:analytics"}).Return(nil).Once()
			},
			wantHasPermission: true,
		},
		{
			name:        "malformed permission is skipped and duplicates collapse",
			permissions: []string{"read:analytics", "analytics", "read: analytics"},
			mockManager: func(m *MockPermissionManager) {
				m.On("UserPermissions", mock.Anything, userID).Return([]string{}, nil).Once()
				m.On("AddUserPermissions", mock.Anything, userID, []string{"read:analytics"}).Return(nil).Once()
			},
			wantHasPermission: true,
		},
		{
			name:        "no permissions, user loses all overrides",
			permissions: []string{},
			mockManager: func(m *MockPermissionManager) {
				m.On("UserPermissions", mock.Anything, userID).Return([]string{"*"}, nil).Once()
				m.On("DeleteUserPermissions", mock.Anything, userID, []string{"*"}).Return(nil).Once()
			},
			wantHasPermission: false,
		},
		{
			name:        "lookup failure",
			permissions: []string{"read:analytics"},
			mockManager: func(m *MockPermissionManager) {
				m.On("UserPermissions", mock.Anything, userID).Return([]string(nil), errors.New("connection reset")).Once()
			},
			wantErr: true,
		},
		{
			name:        "grant failure",
			permissions: []string{"read:analytics"},
			mockManager: func(m *MockPermissionManager) {
				m.On("UserPermissions", mock.Anything, userID).Return([]string{}, nil).Once()
				m.On("AddUserPermissions", mock.Anything, userID, []string{"read:analytics"}).Return(errors.New("insert failed")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := new(MockPermissionManager)
			tt.mockManager(m)

			client := NewPermissionAssignmentClient(m)
			got, err := client.AssignPermissions(context.Background(), userID, tt.permissions)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantHasPermission, got)
			}

			m.AssertExpectations(t)
		})
	}
}
