// Package query answers the fixed analytical questions over a store.Database.
//
// Every function reads the Good, Buyer, Shop and Sale tables through
// store.GetTable and never mutates the Database. Each is a fixed pipeline of
// named steps (load, index/join, group, aggregate, sort, select) rather than
// a general query engine.
//
// # Empty Input
//
// Empty tables never cause errors. Aggregates return their neutral result:
// an empty slice, zero, or ok=false for "absent". The only error a query
// returns is the store's TABLE_NOT_FOUND when a table was never created.
//
// # Determinism
//
// All sorts are stable and the direction of every tie-break is fixed:
//   - GoodsOfLongestNameBuyer: ascending by (name length, name), last wins
//   - MostExpensiveGoodCategory: descending by price, first wins
//   - MinimumSalesCity: ascending by revenue, first wins
//   - MostPopularGoodBuyers: descending by quantity, first wins
//
// Groups are formed in order of first appearance. Joins are inner equality
// joins on identity fields, so rows with dangling references drop out.
package query
