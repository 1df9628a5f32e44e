// Package pipeline builds link reports as a sequence of steps.
//
// A report build runs these steps over one *model.Report:
//
//   - load: fetch the course and lay out one section header per section,
//     followed by one row per content item, in store order
//   - validate: validate every item and write its ItemReport into its row
//   - filter: drop the entries the selected filter does not keep
//   - summarize: copy the totals into the report
//
// Row order is fixed by the load step before any probing starts, so the
// report never depends on the order in which probes complete. Filtering
// runs after validation, so totals always describe the unfiltered probe
// universe.
//
// When the build is cancelled the rows of completed items are kept, the
// others dropped and the report is marked partial; filter and summarize
// still run so the partial report can be rendered.
//
// BatchProcessor builds reports for several courses concurrently with a
// bounded number of builds in flight.
package pipeline
