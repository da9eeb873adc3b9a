package mcpserver

// NamingContract describes the document naming scheme that LLM consumers
// should follow when reading or recording project documents.
const NamingContract = `# Planvault Document Naming Contract

Every document in the managed project directory is a flat Markdown file
whose name determines its category.

## Naming patterns

| Pattern | Category | Example |
|---|---|---|
| ` + "`" + `M##_S##.<slug>.md` + "`" + ` | sprint | ` + "`" + `M01_S02.auth_flow.md` + "`" + ` |
| ` + "`" + `DOCREF_###.<slug>.md` + "`" + ` | doc | ` + "`" + `DOCREF_001.api_design.md` + "`" + ` |
| ` + "`" + `CODEREF_<slug>.md` + "`" + ` | code | ` + "`" + `CODEREF_auth_module.md` + "`" + ` |
| ` + "`" + `OPINIONS_###.<slug>.md` + "`" + ` | opinion | ` + "`" + `OPINIONS_001.db_choice.md` + "`" + ` |
| ` + "`" + `PLAN.md` + "`" + `, ` + "`" + `CURRENT.md` + "`" + ` | core | fixed names |

Anything else is treated as loose documentation (category ` + "`" + `doc` + "`" + `).

## Rules

1. **Names are generated, never chosen.** The ` + "`" + `record_document` + "`" + ` tool derives
   the file name from the category and target; sequence numbers (###) are
   assigned automatically and never reused.
2. **Slugs** are lowercase ASCII: letters, digits, underscores, and hyphens.
   The tool derives the slug from the target description.
3. **Flat layout.** No subdirectories; every document sits directly in the
   managed directory.
4. **Markdown only.** Content is UTF-8 Markdown with a trailing newline.
5. **No active content.** Script tags, javascript: URIs, iframes, inline
   event handlers, and eval calls are rejected on write and on read.
6. **Size limits.** Content up to 524288 characters; files up to 1 MiB.
7. **Core documents** (` + "`" + `PLAN.md` + "`" + `, ` + "`" + `CURRENT.md` + "`" + `) are created by
   ` + "`" + `init_project` + "`" + ` and only ever updated, never recorded.

## Recording

- ` + "`" + `category=doc` + "`" + ` for external documentation references.
- ` + "`" + `category=code` + "`" + ` for notes about a code location. Recording the same
  target again overwrites the previous note (no sequence number).
- ` + "`" + `category=opinion` + "`" + ` for design stances and tradeoff calls.
- Omit ` + "`" + `content` + "`" + ` to get a pre-filled template for the category.
`
