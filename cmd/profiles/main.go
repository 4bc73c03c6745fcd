package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/config"
	"github.com/rakbuku/rakbuku/pkg/database"
	"github.com/rakbuku/rakbuku/pkg/models"
	"github.com/rakbuku/rakbuku/pkg/profiles"
	"github.com/robinjoseph08/golib/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	profileService := profiles.NewService(db)

	app := &cli.App{
		Name:        "profiles",
		Usage:       "inspect and change user roles",
		Description: "Roles are only ever changed out of band, through this CLI.",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "print the profile of a user",
				ArgsUsage: "<user-id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.ShowSubcommandHelp(c)
					}

					profile, err := profileService.RetrieveProfile(c.Context, c.Args().First())
					if err != nil {
						return err
					}

					fmt.Printf("id:         %s\n", profile.ID)
					fmt.Printf("role:       %s\n", profile.Role())
					fmt.Printf("created_at: %s\n", profile.CreatedAt.Format("2006-01-02 15:04:05"))
					fmt.Printf("updated_at: %s\n", profile.UpdatedAt.Format("2006-01-02 15:04:05"))
					return nil
				},
			},
			{
				Name:      "set-role",
				Usage:     "set the role of a user, creating the profile if needed",
				ArgsUsage: "<user-id> <admin|member>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.ShowSubcommandHelp(c)
					}

					role, err := models.ParseRole(c.Args().Get(1))
					if err != nil {
						return errors.WithStack(err)
					}

					profile, err := profileService.SetRole(c.Context, c.Args().First(), role)
					if err != nil {
						return err
					}

					log.Info("role updated", logger.Data{"user_id": profile.ID, "role": profile.Role()})
					return nil
				},
			},
		},
	}

	err = app.Run(os.Args)
	if cerr := db.Close(); cerr != nil {
		log.Err(cerr).Error("database close error")
	}
	if err != nil {
		log.Err(err).Fatal("app run error")
	}
}
