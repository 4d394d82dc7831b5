// Package dataprocessing reads the monthly sales workbooks and the CSV
// reference tables and normalizes them into typed tables for aggregation.
//
// Source exports are heterogeneous: header spellings, casing and unit
// suffixes vary between files and months. Every table resolves its columns
// once, up front, through a declarative alias schema; row parsing then works
// exclusively through the resolved column map. Malformed rows are dropped and
// counted, never fatal — only an entirely absent required table aborts a load.
package dataprocessing
