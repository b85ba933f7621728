package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talenti/fitscore/internal/adapters/repository"
	"github.com/talenti/fitscore/internal/config"
	"github.com/talenti/fitscore/internal/domain/culture"
)

// orgFile is the on-disk shape accepted by "org import".
type orgFile struct {
	Organisations []struct {
		ID              string `yaml:"id"`
		Name            string `yaml:"name"`
		ValuesFramework any    `yaml:"values_framework"`
	} `yaml:"organisations"`
	JobRoles []struct {
		ID             string `yaml:"id"`
		OrganisationID string `yaml:"organisation_id"`
		Title          string `yaml:"title"`
	} `yaml:"job_roles"`
	Applications []struct {
		ID          string `yaml:"id"`
		JobRoleID   string `yaml:"job_role_id"`
		CandidateID string `yaml:"candidate_id"`
	} `yaml:"applications"`
}

func newOrgCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage organisation scoring context in the store",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite path (defaults to the configured db_path)")

	importCmd := &cobra.Command{
		Use:   "import <orgs.yaml|orgs.json|->",
		Short: "Upsert organisations, job roles, and applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f orgFile
			if err := readDocument(cmd.InOrStdin(), args[0], &f); err != nil {
				return err
			}
			ds, err := f.dataset()
			if err != nil {
				return err
			}
			store, err := openStore(cmd, dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Import(cmd.Context(), ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d organisations, %d job roles, %d applications\n",
				len(ds.Organisations), len(ds.JobRoles), len(ds.Applications))
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <org-id>",
		Short: "Resolve an organisation's scoring context and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rc, err := culture.NewResolver(store).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			raw, err := json.Marshal(map[string]any{
				"org_id":                rc.OrgID,
				"operating_environment": rc.Environment,
				"taxonomy":              rc.Taxonomy,
				"missing_fields":        rc.Environment.MissingFields(),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}

	cmd.AddCommand(importCmd, checkCmd)
	return cmd
}

func openStore(cmd *cobra.Command, dbPath string) (*repository.Store, error) {
	if dbPath == "" {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return nil, err
		}
		dbPath = cfg.DBPath
	}
	return repository.Open(dbPath)
}

func (f *orgFile) dataset() (repository.Dataset, error) {
	var ds repository.Dataset
	for _, o := range f.Organisations {
		org := repository.Organisation{ID: o.ID, Name: o.Name}
		switch vf := o.ValuesFramework.(type) {
		case nil:
		case string:
			org.ValuesFramework = &vf
		case map[string]any:
			if err := org.SetValuesFramework(vf); err != nil {
				return ds, fmt.Errorf("organisation %s: %w", o.ID, err)
			}
		default:
			return ds, fmt.Errorf("organisation %s: values_framework must be an object or JSON text", o.ID)
		}
		ds.Organisations = append(ds.Organisations, org)
	}
	for _, r := range f.JobRoles {
		ds.JobRoles = append(ds.JobRoles, repository.JobRole{ID: r.ID, OrganisationID: r.OrganisationID, Title: r.Title})
	}
	for _, a := range f.Applications {
		ds.Applications = append(ds.Applications, repository.Application{ID: a.ID, JobRoleID: a.JobRoleID, CandidateID: a.CandidateID})
	}
	return ds, nil
}
