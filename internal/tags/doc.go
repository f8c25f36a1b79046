// Package tags implements the semantic tag registry.
//
// A registry holds a taxonomy tree rooted at the four categories and
// classifies tag ids into their category. Each tag has a full UID formed by
// its path from the root, e.g. Location_Indoor_Room_LivingRoom.
package tags
