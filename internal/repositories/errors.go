package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes the repositories care about.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgAdminShutdown        = "57P01"
	pgCannotConnectNow     = "57P03"
	pgConnectionClass      = "08"
)

// classifyPostgres converts a gorm/pgx error into an *apperror.Error. onUnique is
// the kind reported for unique violations: DuplicateEdge for the follow graph,
// Conflict elsewhere.
func classifyPostgres(op string, err error, onUnique apperror.Kind) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.Wrap(op, apperror.NotFound, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Wrap(op, onUnique, "record already exists", err)
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return apperror.Wrap(op, apperror.TransientStore, "store timeout", err)
	case errors.Is(err, driver.ErrBadConn):
		return apperror.Wrap(op, apperror.TransientStore, "bad connection", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.Wrap(op, onUnique, "record already exists", err)
		case pgForeignKeyViolation:
			return apperror.Wrap(op, apperror.ConstraintViolation, "referenced user does not exist", err)
		case pgCheckViolation:
			return apperror.Wrap(op, apperror.InvalidEdge, "check constraint violated", err)
		case pgSerializationFailure, pgDeadlockDetected, pgAdminShutdown, pgCannotConnectNow:
			return apperror.Wrap(op, apperror.TransientStore, "transaction aborted", err)
		}
		if strings.HasPrefix(pgErr.Code, pgConnectionClass) {
			return apperror.Wrap(op, apperror.TransientStore, "connection failure", err)
		}
		return apperror.Wrap(op, apperror.Unknown, "database error", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperror.Wrap(op, apperror.TransientStore, "network error", err)
	}

	return apperror.Wrap(op, apperror.Unknown, "database error", err)
}
