// file: internal/service/db_init.go
package service

import (
	"database/sql"
	"fmt"
	"log"
)

// InitDomainTables checks and creates every table of the application at startup.
func InitDomainTables(db *sql.DB) error {
	steps := []struct {
		name string
		fn   func(*sql.DB) error
	}{
		{"catalog", initCatalogTables},
		{"users", initUserTables},
		{"bons de commande", initBonDeCommandeTables},
		{"suivi", initSuiviTables},
		{"ordres de travail", initOtTables},
		{"notifications", initNotificationTables},
		{"dashboard", initDashboardTables},
	}
	for _, s := range steps {
		if err := s.fn(db); err != nil {
			return fmt.Errorf("init %s tables: %w", s.name, err)
		}
	}
	log.Println("database: all application tables checked")
	return nil
}

func execAll(db *sql.DB, stmts ...string) error {
	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func initCatalogTables(db *sql.DB) error {
	return execAll(db,
		`CREATE TABLE IF NOT EXISTS zones (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        nom TEXT UNIQUE NOT NULL
    );`,
		`CREATE TABLE IF NOT EXISTS sites (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        codesite TEXT UNIQUE NOT NULL,
        region TEXT NOT NULL DEFAULT '',
        zone_id INTEGER REFERENCES zones(id) ON DELETE SET NULL
    );`,
		`CREATE TABLE IF NOT EXISTS familles (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT UNIQUE NOT NULL
    );`,
		`CREATE TABLE IF NOT EXISTS services (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        famille_id INTEGER REFERENCES familles(id) ON DELETE SET NULL,
        ref_auxigene TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        unite TEXT NOT NULL DEFAULT '',
        type TEXT NOT NULL DEFAULT '',
        prix REAL NOT NULL DEFAULT 0,
        remarque TEXT,
        modele_technique TEXT,
        type_materiel TEXT,
        specification TEXT,
        famille_technique TEXT
    );`,
		`CREATE INDEX IF NOT EXISTS idx_services_famille ON services (famille_id);`,
	)
}

func initUserTables(db *sql.DB) error {
	return execAll(db,
		`CREATE TABLE IF NOT EXISTS utilisateurs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        nom TEXT NOT NULL DEFAULT '',
        email TEXT UNIQUE NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('BACK_OFFICE', 'CHEF_PROJET', 'COORDINATEUR')),
        zone_id INTEGER REFERENCES zones(id) ON DELETE SET NULL
    );`,
		`CREATE INDEX IF NOT EXISTS idx_utilisateurs_role ON utilisateurs (role);`,
	)
}

func initBonDeCommandeTables(db *sql.DB) error {
	return execAll(db,
		`CREATE TABLE IF NOT EXISTS bon_de_commande (
        num_bc TEXT PRIMARY KEY,
        division_projet TEXT NOT NULL DEFAULT '',
        code_projet TEXT NOT NULL DEFAULT '',
        description TEXT NOT NULL DEFAULT '',
        date_edition TEXT,
        num_projet_facturation TEXT,
        num_pv_reception TEXT,
        back_office_id INTEGER REFERENCES utilisateurs(id) ON DELETE SET NULL
    );`,
		`CREATE TABLE IF NOT EXISTS prestations (
        id TEXT PRIMARY KEY,
        bc_id TEXT NOT NULL REFERENCES bon_de_commande(num_bc) ON DELETE CASCADE,
        num_ligne INTEGER NOT NULL DEFAULT 0,
        famille TEXT NOT NULL DEFAULT '',
        description TEXT NOT NULL DEFAULT '',
        fournisseur TEXT,
        qte_bc REAL NOT NULL DEFAULT 0,
        service_id INTEGER REFERENCES services(id) ON DELETE SET NULL
    );`,
		`CREATE INDEX IF NOT EXISTS idx_prestations_bc ON prestations (bc_id);`,
	)
}

func initSuiviTables(db *sql.DB) error {
	return execAll(db,
		`CREATE TABLE IF NOT EXISTS suivi_prestation (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        prestation_id TEXT NOT NULL REFERENCES prestations(id) ON DELETE CASCADE,
        site_id INTEGER REFERENCES sites(id) ON DELETE SET NULL,
        zone_id INTEGER REFERENCES zones(id) ON DELETE SET NULL,
        coordinateur_id INTEGER REFERENCES utilisateurs(id) ON DELETE SET NULL,
        quantite_valide INTEGER,
        qte_realise REAL,
        qte_encours REAL,
        qte_tech REAL,
        qte_depose REAL,
        qteadepose REAL,
        qte_sys REAL,
        fournisseur TEXT,
        date_planifiee TEXT,
        date_go TEXT,
        date_debut TEXT,
        date_fin TEXT,
        date_realisation TEXT,
        statut_de_realisation TEXT,
        date_recep_tech TEXT,
        statut_de_recep_tech TEXT,
        date_pf TEXT,
        date_recep_sys TEXT,
        statut_reception_system TEXT,
        remarque TEXT,
        delai_recep INTEGER
    );`,
		`CREATE INDEX IF NOT EXISTS idx_suivi_prestation ON suivi_prestation (prestation_id);`,
		`CREATE INDEX IF NOT EXISTS idx_suivi_coordinateur ON suivi_prestation (coordinateur_id);`,
	)
}

func initOtTables(db *sql.DB) error {
	return execAll(db,
		`CREATE TABLE IF NOT EXISTS ots (
        num_ot TEXT PRIMARY KEY,
        division_projet TEXT NOT NULL DEFAULT '',
        code_projet TEXT NOT NULL DEFAULT '',
        zone_id INTEGER REFERENCES zones(id) ON DELETE SET NULL,
        site_id INTEGER REFERENCES sites(id) ON DELETE SET NULL,
        date_go TEXT,
        back_office_id INTEGER REFERENCES utilisateurs(id) ON DELETE SET NULL,
        bc_id TEXT REFERENCES bon_de_commande(num_bc) ON DELETE SET NULL
    );`,
		`CREATE TABLE IF NOT EXISTS ot_prestations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ot_id TEXT NOT NULL REFERENCES ots(num_ot) ON DELETE CASCADE,
        num_ligne INTEGER,
        quantite_valide INTEGER,
        service_id INTEGER REFERENCES services(id) ON DELETE SET NULL,
        famille TEXT,
        coordinateur_id INTEGER REFERENCES utilisateurs(id) ON DELETE SET NULL,
        fournisseur TEXT,
        date_planifiee TEXT,
        date_go TEXT,
        date_debut TEXT,
        date_fin TEXT,
        date_realisation TEXT,
        statut_de_realisation TEXT,
        date_recep_tech TEXT,
        statut_de_recep_tech TEXT,
        date_pf TEXT,
        date_recep_sys TEXT,
        statut_reception_system TEXT,
        remarque TEXT,
        qte_realise REAL NOT NULL DEFAULT 0,
        qte_encours REAL NOT NULL DEFAULT 0,
        delai_recep INTEGER
    );`,
		`CREATE INDEX IF NOT EXISTS idx_ot_prestations_ot ON ot_prestations (ot_id);`,
	)
}

func initNotificationTables(db *sql.DB) error {
	return execAll(db,
		`CREATE TABLE IF NOT EXISTS notifications (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL REFERENCES utilisateurs(id) ON DELETE CASCADE,
        message TEXT NOT NULL,
        created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
        is_read BOOLEAN NOT NULL DEFAULT FALSE
    );`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, is_read);`,
		`CREATE TABLE IF NOT EXISTS suivi_notifications (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        suivi_id INTEGER NOT NULL REFERENCES suivi_prestation(id) ON DELETE CASCADE,
        notification_type TEXT NOT NULL,
        UNIQUE (suivi_id, notification_type)
    );`,
	)
}

func initDashboardTables(db *sql.DB) error {
	return execAll(db,
		`CREATE TABLE IF NOT EXISTS dashboard_metrics (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        back_office_id INTEGER NOT NULL REFERENCES utilisateurs(id) ON DELETE CASCADE,
        famille TEXT NOT NULL,
        calculation_date TEXT NOT NULL,
        montant_total_bc REAL NOT NULL DEFAULT 0,
        montant_cloture_terrain REAL NOT NULL DEFAULT 0,
        taux_realisation REAL NOT NULL DEFAULT 0,
        montant_receptionne_facture REAL NOT NULL DEFAULT 0,
        montant_depose_sys REAL NOT NULL DEFAULT 0,
        montant_a_depose_sys REAL NOT NULL DEFAULT 0,
        UNIQUE (back_office_id, famille, calculation_date)
    );`,
	)
}
