package depthstorev1

import "context"

// Store receives periodic depth views of the book.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=depthstorev1_mock
type Store interface {
	Store(ctx context.Context, view *DepthView) error
}
