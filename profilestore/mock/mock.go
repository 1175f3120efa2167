// Package mock is used to generate mock files for testing.
package mock

//go:generate mockgen -source ../profilestore_iface.go -exclude_interfaces Store -destination mock_profilestore/mock_profilestore_iface.go
