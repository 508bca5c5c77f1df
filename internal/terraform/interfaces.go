package terraform

// IProvider is the interface for Terraform operations
//
//go:generate mockery --name=IProvider --output=./mocks
type IProvider interface {
	ApprovedAMIs(path string) ([]string, error)
}
