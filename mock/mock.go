// Package mock is used to generate mock files for testing.
package mock

//go:generate mockgen -source ../identity/identity_iface.go -destination mock_identity/mock_identity_iface.go
//go:generate mockgen -source ../profilestore/profilestore_iface.go -exclude_interfaces db -destination mock_profilestore/mock_profilestore_iface.go
