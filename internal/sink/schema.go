package sink

import "fmt"

// The column layout is fixed; dashboards select these names directly.

func createCurrentSQL(table string, ifNotExists bool) string {
	return fmt.Sprintf(`CREATE TABLE %s%s (
		artist VARCHAR(255),
		artistOrigin VARCHAR(255),
		images VARCHAR(255),
		genres VARCHAR(255),
		subGenres VARCHAR(255),
		name VARCHAR(255),
		releaseDate INT,
		youtubeMusicId VARCHAR(255),
		spotifyId VARCHAR(255)
	)`, existsClause(ifNotExists), table)
}

func createHistorySQL(table string, ifNotExists bool) string {
	return fmt.Sprintf(`CREATE TABLE %s%s (
		artist VARCHAR(255),
		name VARCHAR(255),
		artistOrigin VARCHAR(255),
		releaseDate VARCHAR(255),
		images VARCHAR(255),
		allGenres VARCHAR(255),
		streak DOUBLE PRECISION,
		rating INT,
		globalRating DOUBLE PRECISION,
		review TEXT,
		youtubeMusicId VARCHAR(255)
	)`, existsClause(ifNotExists), table)
}

func existsClause(ifNotExists bool) string {
	if ifNotExists {
		return "IF NOT EXISTS "
	}
	return ""
}

const currentColumns = `artist, artistOrigin, images, genres, subGenres, name, releaseDate, youtubeMusicId, spotifyId`

const historyColumns = `artist, name, artistOrigin, releaseDate, images, allGenres, streak, rating, globalRating, review, youtubeMusicId`

func insertCurrentSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES (:artist, :artistOrigin, :images, :genres, :subGenres, :name, :releaseDate, :youtubeMusicId, :spotifyId)`,
		table, currentColumns)
}

func insertHistorySQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES (:artist, :name, :artistOrigin, :releaseDate, :images, :allGenres, :streak, :rating, :globalRating, :review, :youtubeMusicId)`,
		table, historyColumns)
}
