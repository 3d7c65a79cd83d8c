// Command post-processing loads a directory of gh-search JSON exports, one
// file per day, into a SQLite history database.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// exportedRepo is the part of an exported record the history keeps.
type exportedRepo struct {
	FullName string `json:"full_name"`
	Stars    int    `json:"stargazers_count"`
}

func main() {
	dbPath := flag.String("db", "history.db", "SQLite database file")
	dir := flag.String("dir", "../history", "Directory of JSON exports")
	flag.Parse()

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = filepath.Walk(*dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		return processFile(db, path)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error walking the path %q: %v\n", *dir, err)
		os.Exit(1)
	}
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS totals (
			date TEXT PRIMARY KEY,
			total INTEGER
		);
		CREATE TABLE IF NOT EXISTS repositories (
			repository TEXT PRIMARY KEY,
			first_seen TEXT,
			stars INTEGER
		);
	`)
	return err
}

// dateFromPath uses the file name without its extension as the date.
func dateFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func readExport(path string) ([]exportedRepo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var repos []exportedRepo
	if err := json.Unmarshal(data, &repos); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return repos, nil
}

func processFile(db *sql.DB, path string) error {
	repos, err := readExport(path)
	if err != nil {
		return err
	}
	date := dateFromPath(path)

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR REPLACE INTO totals (date, total) VALUES (?, ?)", date, len(repos)); err != nil {
		return err
	}
	for _, r := range repos {
		if r.FullName == "" {
			continue
		}
		_, err := tx.Exec(`INSERT INTO repositories (repository, first_seen, stars) VALUES (?, ?, ?)
			ON CONFLICT(repository) DO UPDATE SET first_seen = MIN(first_seen, ?), stars = ?`,
			r.FullName, date, r.Stars, date, r.Stars)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
