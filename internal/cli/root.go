package cli

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/anonto42/nano-midea/socialgraph/internal/app"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"github.com/anonto42/nano-midea/socialgraph/pkg/config"
	"github.com/anonto42/nano-midea/socialgraph/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// session carries what every subcommand needs once the root pre-run has
// connected to the stores.
type session struct {
	app *app.App
	cfg *config.Config
	out io.Writer
}

// context bounds one command's store calls by STORE_TIMEOUT.
func (s *session) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if s.cfg.StoreTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.StoreTimeout)
	}
	return context.WithCancel(ctx)
}

// NewRootCmd builds the graphctl command tree. Output goes to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	s := &session{out: out}

	root := &cobra.Command{
		Use:           "graphctl [command] [flags]",
		Short:         "Manage users, follows, microposts and feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
				return err
			}
			log := logger.Get()

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				log.Error("Failed to initialize", zap.Error(err))
				return err
			}
			s.cfg = cfg
			s.app = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s.app != nil {
				s.app.Close()
			}
			logger.Sync()
		},
	}

	root.AddCommand(
		newUserCmd(s),
		newPostCmd(s),
		newFollowCmd(s),
		newUnfollowCmd(s),
		newFollowingCmd(s),
		newFollowersCmd(s),
		newIsFollowingCmd(s),
		newFeedCmd(s),
		newMessageCmd(s),
	)
	return root
}

// Execute runs graphctl with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd(os.Stdout).ExecuteContext(ctx)
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.New(apperror.Validation, "invalid user id "+strconv.Quote(arg), err)
	}
	return uint(id), nil
}

func parseIDs(args ...string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// addPageFlags registers --page and --page-size; zero values fall back to the
// configured defaults.
func addPageFlags(cmd *cobra.Command, page, pageSize *int) {
	cmd.Flags().IntVarP(page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(pageSize, "page-size", "n", 0, "items per page")
}
