package sqlinline

// PostgreSQL statements for the single-row role assignment table.

const QCreateRolesTable = `--sql d1cab75c-5e78-4ab2-bde1-3fff09c715c5
create table if not exists roles (
    id             integer primary key check (id = 1),
    admin_session  text,
    editor_session text,
    created_at     timestamptz not null default now()
);
`

const QSeedRolesRow = `--sql 66d2c62e-0b33-4e8d-8c41-39c18558f2dd
insert into roles (id) values (1)
on conflict (id) do nothing;
`

const QGetRoles = `--sql 0e3563f8-a68e-42d3-a050-87f6b5dc8240
select admin_session, editor_session
from roles
where id = 1;
`

// Claims only succeed while the slot is empty; the editor slot additionally
// needs an admin that is not the claimant.
const QClaimAdminRole = `--sql 7ec91833-c59c-4dcf-b9d7-4dfac42a31a1
update roles
set admin_session = $1::text
where id = 1 and admin_session is null;
`

const QClaimEditorRole = `--sql 584d7d4f-8b64-42ce-9aed-9d3e9eea85ec
update roles
set editor_session = $1::text
where id = 1
  and editor_session is null
  and admin_session is not null
  and admin_session <> $1::text;
`

const QClearRoles = `--sql 60fe3fb1-e34a-4f62-86d4-d9af6aa8cbc7
update roles
set admin_session = null, editor_session = null
where id = 1;
`
