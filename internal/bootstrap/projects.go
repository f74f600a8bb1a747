package bootstrap

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/chmouel/apollo/internal/cargo"
	"github.com/chmouel/apollo/internal/config"
	"github.com/chmouel/apollo/internal/state"
	urfavecli "github.com/urfave/cli/v3"
)

func projectsCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "projects",
		Usage: "Manage the open projects",
		Commands: []*urfavecli.Command{
			{
				Name:   "list",
				Usage:  "List the open projects",
				Action: handleProjectsList,
			},
			{
				Name:      "add",
				Usage:     "Open a project folder",
				ArgsUsage: "<path>",
				Action:    handleProjectsAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Close a project",
				ArgsUsage: "<id>",
				Action:    handleProjectsRemove,
			},
		},
	}
}

func loadState(cmd *urfavecli.Command) (*config.AppConfig, *state.State, error) {
	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return cfg, state.Load(cfg.StatePath(), cfg.RunArgs), nil
}

func handleProjectsList(_ context.Context, cmd *urfavecli.Command) error {
	_, st, err := loadState(cmd)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(outWriter(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPATH")
	for _, p := range st.Projects {
		marker := ""
		if p.ID == st.ActiveProject {
			marker = "*"
		}
		fmt.Fprintf(w, "%d%s\t%s\t%s\n", p.ID, marker, p.DisplayName(), p.PathString())
	}
	return w.Flush()
}

func handleProjectsAdd(_ context.Context, cmd *urfavecli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected one project path")
	}
	cfg, st, err := loadState(cmd)
	if err != nil {
		return err
	}
	abs, err := absFolder(cmd.Args().First())
	if err != nil {
		return err
	}
	if _, err := cargo.ReadManifest(abs); err != nil {
		return err
	}
	id := st.AddProjectByPath(abs)
	if id == state.NoProject {
		return fmt.Errorf("%s is already open", abs)
	}
	if err := state.Save(cfg.StatePath(), st); err != nil {
		return err
	}
	fmt.Fprintf(outWriter(cmd), "Opened %s as project %d\n", abs, id)
	return nil
}

func handleProjectsRemove(_ context.Context, cmd *urfavecli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected one project id")
	}
	id, err := strconv.ParseUint(cmd.Args().First(), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid project id %q", cmd.Args().First())
	}
	cfg, st, err := loadState(cmd)
	if err != nil {
		return err
	}
	p := st.Project(uint32(id))
	if p == nil {
		return fmt.Errorf("no open project with id %d", id)
	}
	st.RemoveProject(p.ID)
	if err := state.Save(cfg.StatePath(), st); err != nil {
		return err
	}
	fmt.Fprintf(outWriter(cmd), "Closed %s\n", p.PathString())
	return nil
}
