// Package jobs persists upload jobs and their generated segments in a
// SQLite database. The store is the single source of truth for job
// state: handlers create rows at upload time, the splitter advances
// them through splitting and ready, and the retention sweeper removes
// rows once their artifacts expire.
package jobs
