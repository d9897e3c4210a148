package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/prolens/internal/client/ai"
	"github.com/dmitrijs2005/prolens/internal/client/cache"
	"github.com/dmitrijs2005/prolens/internal/client/config"
	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/client/services"
	"github.com/dmitrijs2005/prolens/internal/client/storage"
	"github.com/dmitrijs2005/prolens/internal/logging"
)

type App struct {
	config *config.Config
	log    logging.Logger

	local *storage.Local
	cloud *storage.Cloud

	materials     services.MaterialsRepository
	cache         *cache.Materials
	bundles       services.BundleCodec
	registrations services.RegistrationService
	presentations services.PresentationService
	state         services.StateService
	tutor         services.Tutor

	in          *bufio.Reader
	out         io.Writer
	unsubscribe func()
}

// NewApp opens the local store and, when the cloud credentials are
// complete, the cloud mirror. The materials backend is chosen here once
// and never changes for the life of the App.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	local, err := storage.OpenLocal(ctx, c.DatabasePath())
	if err != nil {
		return nil, err
	}

	var (
		cl   *storage.Cloud
		repo services.MaterialsRepository
	)
	if c.Cloud.IsConfigured() {
		cl, err = storage.OpenCloud(ctx, c.Cloud, c.SubscriptionRetry, log)
		if err != nil {
			_ = local.Close()
			return nil, err
		}
		repo = services.NewCloudMaterials(cl.Materials, cl.Blobs, cl.Subscriber, log.With("backend", "cloud"))
	} else {
		repo = services.NewLocalMaterials(local.Materials, log.With("backend", "local"))
	}

	var gateway ai.Gateway = ai.Disabled{}
	if c.AI.IsConfigured() {
		gateway = ai.NewOpenAIGateway(c.AI)
	}

	app, err := newApp(ctx, c, log, local, cl, repo, gateway, os.Stdin, os.Stdout)
	if err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, local *storage.Local, cl *storage.Cloud,
	repo services.MaterialsRepository, gateway ai.Gateway, in io.Reader, out io.Writer) (*App, error) {

	a := &App{
		config:        c,
		log:           log,
		local:         local,
		cloud:         cl,
		materials:     repo,
		bundles:       services.NewBundleCodec(local, repo.Backend(), log),
		registrations: services.NewRegistrationService(local.Flags),
		presentations: services.NewPresentationService(local.Presentations),
		state:         services.NewStateService(local, c.RecoveryCode),
		in:            bufio.NewReader(in),
		out:           out,
	}

	mc, err := cache.New(repo, c.CacheSize)
	if err != nil {
		return a, fmt.Errorf("failed to create material cache: %w", err)
	}
	a.cache = mc
	a.tutor = services.NewTutor(gateway, a.state, repo, mc, &http.Client{Timeout: 2 * time.Minute}, log)

	if err := a.state.EnsureAdminPassword(ctx); err != nil {
		return a, err
	}

	unsubscribe, err := repo.Subscribe(ctx, mc.Replace)
	if err != nil {
		return a, fmt.Errorf("failed to load materials: %w", err)
	}
	a.unsubscribe = unsubscribe

	return a, nil
}

// Run greets the user and blocks in the REPL until exit.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintf(a.out, "Welcome to ProLens (%s materials, type 'help' for commands)\n", a.materials.Backend())
	if text, err := a.state.Announcement(ctx); err == nil && text != "" {
		fmt.Fprintf(a.out, "Announcement: %s\n", text)
	}

	runREPL(ctx, a, a.getStatus, a.in)
}

func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.cloud != nil {
		_ = a.cloud.Close()
	}
	if a.local != nil {
		_ = a.local.Close()
	}
}

func (a *App) role() models.Role {
	role, ok, err := a.state.Role(context.Background())
	if err != nil || !ok {
		return ""
	}
	return role
}

func (a *App) isAdmin() bool {
	return a.role() == models.RoleAdmin
}

func (a *App) getStatus() string {
	s := string(a.materials.Backend())
	if role := a.role(); role != "" {
		s = string(role) + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) commands() []command {
	return []command{
		{name: "status", usage: "status", run: a.status},
		{name: "role", usage: "role [student]", run: a.setRole},
		{name: "admin", usage: "admin [passwd]", run: a.admin},
		{name: "logout", usage: "logout", run: a.logout},
		{name: "announce", usage: "announce [text...|edit|clear]", run: a.announce},
		{name: "topics", usage: "topics", run: a.topics},
		{name: "complete", usage: "complete <topic>", run: a.complete},
		{name: "preset", usage: "preset [aperture shutter iso]", run: a.preset},
		{name: "reset", usage: "reset", run: a.reset},

		{name: "materials", usage: "materials", run: a.listMaterials},
		{name: "upload", usage: "upload <file>", adminOnly: true, run: a.upload},
		{name: "delete", usage: "delete <material-id>", adminOnly: true, run: a.deleteMaterial},
		{name: "chat", usage: "chat [question...|clear]", run: a.chat},
		{name: "critique", usage: "critique <photo>", run: a.critique},
		{name: "quiz", usage: "quiz <topic>", run: a.quiz},

		{name: "presentations", usage: "presentations", run: a.listPresentations},
		{name: "presentation", usage: "presentation <presentation-id>", run: a.showPresentation},
		{name: "present", usage: "present <file>", adminOnly: true, run: a.present},
		{name: "unpresent", usage: "unpresent <presentation-id>", adminOnly: true, run: a.unpresent},

		{name: "register", usage: "register", run: a.register},
		{name: "registrations", usage: "registrations", adminOnly: true, run: a.listRegistrations},
		{name: "addreg", usage: "addreg", adminOnly: true, run: a.addRegistration},
		{name: "contact", usage: "contact <registration-id>", adminOnly: true, run: a.contact},
		{name: "contacted", usage: "contacted <registration-id>", adminOnly: true, run: a.markContacted},
		{name: "unreg", usage: "unreg <registration-id>", adminOnly: true, run: a.removeRegistration},

		{name: "export", usage: "export [sync|backup]", run: a.export},
		{name: "import", usage: "import <bundle.json>", run: a.importBundle},
		{name: "launcher", usage: "launcher [file]", run: a.launcher},
	}
}
