/*
Package ct600 models the CT600 Company Tax Return as a set of typed form
boxes and builds the IRenvelope body submitted to the gateway.

Box values arrive as a flat map of box number to value, already extracted
from the source accounts and computations. Validation happens at
construction: NewReturn rejects a value set missing a mandatory box or
holding a value that cannot be rendered in the box's declared kind, so a
bad return never reaches the network.

The mapping from box numbers to CompanyTaxReturn elements is a data table
(Mapping). DefaultMapping covers the commonly filed subset of the CT600
(2023) form; callers filing supplementary pages can supply an extended
table.
*/
package ct600
