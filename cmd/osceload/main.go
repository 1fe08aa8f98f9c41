// Command osceload imports patient bundle files (dialog + rubric) into
// the database, validating each rubric before it is stored.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/PochariChun/OSCEVP/internal/db"
	"github.com/PochariChun/OSCEVP/internal/interview"
	"github.com/PochariChun/OSCEVP/internal/patientdef"
)

func main() {
	var (
		driver = flag.String("db-driver", "sqlite", "database driver (sqlite|postgres)")
		dsn    = flag.String("db-dsn", "", "database DSN (driver default when empty)")
		dir    = flag.String("dir", "", "directory of bundle files to load")
	)
	flag.Parse()

	paths := flag.Args()
	if *dir == "" && len(paths) == 0 {
		log.Fatal("usage: osceload [-db-driver d] [-db-dsn dsn] (-dir bundles/ | bundle.json ...)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(*driver), *dsn)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := interview.NewSQLStore(dbh)

	var patients []interview.Patient
	if *dir != "" {
		ps, err := patientdef.LoadDir(*dir)
		if err != nil {
			log.Fatalf("load dir: %v", err)
		}
		patients = append(patients, ps...)
	}
	for _, p := range paths {
		pt, err := patientdef.Load(p)
		if err != nil {
			log.Fatalf("load %s: %v", p, err)
		}
		patients = append(patients, pt)
	}

	for _, p := range patients {
		if err := store.PutPatient(ctx, p); err != nil {
			log.Fatalf("put patient %q: %v", p.Name, err)
		}
		log.Printf("loaded patient %q (%d dialog entries, rubric max %g)",
			p.Name, len(p.Dialog), p.Rubric.MaxScore())
	}
}
