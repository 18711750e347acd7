package cli

import "github.com/anonto42/nano-midea/socialgraph/pkg/apperror"

// ExitCode maps an error to the process exit status. Expected outcomes such as
// "already following" get their own codes so scripts can branch on them.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch apperror.KindOf(err) {
	case apperror.Validation, apperror.InvalidEdge:
		return 2
	case apperror.NotFound:
		return 3
	case apperror.DuplicateEdge, apperror.Conflict:
		return 4
	case apperror.ConstraintViolation:
		return 5
	case apperror.Unauthenticated:
		return 6
	case apperror.TransientStore:
		return 75 // EX_TEMPFAIL
	}
	return 1
}
