// Package cache stores rendered pages for the page cache filter.
//
// Both stores implement [Store]:
//
//   - [Memory] keeps pages in process with TTL expiry and LRU eviction.
//   - [Redis] keeps JSON-encoded pages under a key prefix, letting Redis
//     expire them.
//
// A page is stored with an explicit TTL; a zero TTL uses the store default.
//
//	store := cache.NewMemory(cache.WithMaxEntries(1000))
//	_ = store.Set(ctx, "shop|Index|/shop", &cache.Page{Status: 200, Body: body}, time.Minute)
//
//	page, err := store.Get(ctx, "shop|Index|/shop")
//	if errors.Is(err, cache.ErrNotFound) {
//		// render
//	}
package cache
