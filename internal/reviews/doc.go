// Package reviews fetches IMDb user reviews for a title.
//
// Two modes share one extractor: "http" downloads the server-rendered page
// and "browser" renders it in headless Chrome (chromedp) so additional
// batches can be loaded. Requests are rate limited, and results are stored
// through the Cache interface (backed by the SQLite store) for reuse.
package reviews
