// Package engine implements the semantic metadata engine.
//
// The engine keeps one derived record per item, keyed by item name, and
// recomputes records as items are added, updated and removed. Every
// recomputation funnels through a compare-and-emit step so listeners see
// exactly one added, updated or removed notification per changed record and
// nothing for an identical recomputation.
//
// ARCHITECTURE:
//
// Single Writer:
// Added, Updated and Removed recompute under the engine lock and notify
// listeners once it is released, before returning.
// Producers on many goroutines may instead Enqueue events and let one
// goroutine drain them with Run, strictly in FIFO order.
//
// Processing Flow:
//  1. The target item is recomputed from its own tags and its ancestors
//  2. If the target is a group, each member is recomputed depth-first
//  3. Each recomputation is diffed against the stored record
//  4. Once the lock is released, listeners are notified synchronously, in
//     registration order
//
// Names are resolved lazily against the item graph at computation time. The
// snapshot carried by the event overrides the graph for its own name, and a
// removed item is treated as absent for the rest of that event.
//
// Cyclic membership:
// Descendant traversal carries the ordered path of groups above the current
// item. A member already on the path is a back-edge: it is logged at error
// level and that branch stops while its siblings continue. Reaching an item
// twice through different paths (a diamond) is not a cycle.
package engine
