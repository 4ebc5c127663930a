// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package support rebuilds support conversations from the flat message table.

Every message carries a sender, an optional receiver and an is-from-admin
flag. ConversationKey maps a message to the voter it concerns, and
BuildThreads groups the table into one SupportThread per voter for the
admin inbox. Timeline gives a voter their own messages with a delivery
state: sent, read, or received.

Voter messages are addressed by a Router. FixedRouter always picks the
configured support admin; AssignedRouter prefers whoever last replied.

Admin messages without a receiver have no conversation key and are left
out of every thread. Service.Threads logs how many were skipped.
*/
package support
